package model

// MediaCategory decides how an asset is attached to the outgoing message.
type MediaCategory int

const (
	MediaImage MediaCategory = iota
	MediaAudio
	MediaVideo
	MediaOther
)

func (c MediaCategory) String() string {
	switch c {
	case MediaImage:
		return "image"
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	}
	return "other"
}

// AsDocument reports whether the asset must be sent as a document attachment
// instead of inline media. WhatsApp handles large videos and unknown binary
// types far more reliably as documents.
func (c MediaCategory) AsDocument() bool {
	return c == MediaVideo || c == MediaOther
}

// MediaAsset is a locally staged file ready to be uploaded and attached.
// The campaign owns Path for its whole lifetime and deletes it on release.
type MediaAsset struct {
	Path     string
	FileName string
	MimeType string
	Size     int64
	Category MediaCategory
}
