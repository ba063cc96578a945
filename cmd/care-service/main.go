package main

import (
	"flag"
	"os"

	"github.com/bloomie/bloomie-care/careservice"
)

func main() {
	// Optional storage driver override (sqlite | postgres)
	dbDriver := flag.String("db-driver", "", "Override BLOOMIE_DB_DRIVER (sqlite, postgres)")
	flag.Parse()
	if *dbDriver != "" {
		_ = os.Setenv("BLOOMIE_DB_DRIVER", *dbDriver)
	}

	if err := careservice.Run(); err != nil {
		os.Exit(1)
	}
}
