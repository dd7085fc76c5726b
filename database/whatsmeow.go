package database

import (
	"context"
	"log"

	_ "github.com/lib/pq"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
)

var Container *sqlstore.Container

// InitWhatsmeow opens the whatsmeow device store on Postgres.
func InitWhatsmeow(dbURL string) {
	dbLog := waLog.Stdout("Database", "INFO", true)

	container, err := sqlstore.New(context.Background(), "postgres", dbURL, dbLog)
	if err != nil {
		log.Fatal("Failed to connect whatsmeow DB:", err)
	}

	Container = container
	log.Println("Whatsmeow DB connected successfully")
}
