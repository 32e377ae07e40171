package main

import (
	"flag"
	"fmt"
	"os"

	"celebrity-subscription/internal/infra/db/migrations"
)

// usage: migrate [-database-url URL] up|down|version
func main() {
	dsn := flag.String("database-url", os.Getenv("DATABASE_URL"), "postgres connection string")
	flag.Parse()
	if *dsn == "" {
		fail("database url is required (-database-url or DATABASE_URL)")
	}

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}
	switch cmd {
	case "up":
		if err := migrations.Up(*dsn); err != nil {
			fail(err.Error())
		}
		fmt.Println("migrations applied")
	case "down":
		if err := migrations.Down(*dsn); err != nil {
			fail(err.Error())
		}
		fmt.Println("migrations rolled back")
	case "version":
		v, dirty, err := migrations.Version(*dsn)
		if err != nil {
			fail(err.Error())
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
	default:
		fail("unknown command " + cmd + " (want up, down or version)")
	}
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, "migrate:", msg)
	os.Exit(1)
}
