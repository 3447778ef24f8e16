package models

import (
	"log"

	"github.com/Danielsjcampos/elance-sub000/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Auction{}, &Task{}, &TaskTemplate{},
		&FinancialEntry{}, &CalendarEvent{},
		&AutomationRun{}, &PendingIntent{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
