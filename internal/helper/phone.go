package helper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SebasMa24/Backend-BotWhatsApp/internal/model"

	"go.mau.fi/whatsmeow/types"
)

var nonDigits = regexp.MustCompile(`[^\d]`)

// Column names accepted as the recipient phone field, in lookup order.
var phoneColumns = []string{"celular", "telefono", "phone", "numero"}

// FormatRecipient converts a raw phone value to a WhatsApp JID. Everything
// that is not a digit is stripped, so "+57 313 860 0528" and an address that
// already carries the server suffix both normalize to the same JID.
func FormatRecipient(phone string) (types.JID, error) {
	raw := phone
	if at := strings.IndexByte(raw, '@'); at >= 0 {
		raw = raw[:at]
	}

	cleaned := nonDigits.ReplaceAllString(raw, "")
	if cleaned == "" {
		return types.JID{}, fmt.Errorf("phone number %q has no digits", phone)
	}

	return types.JID{
		User:   cleaned,
		Server: types.DefaultUserServer,
	}, nil
}

// PhoneFromRow returns the raw phone value of a recipient row.
func PhoneFromRow(row model.RecipientRow) (string, bool) {
	for _, col := range phoneColumns {
		if value, ok := row[col]; ok && value != "" {
			return value, true
		}
	}
	return "", false
}
