package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/2beens/rundash/pkg"
)

// prints the bcrypt hash to put into RUNDASH_SYNC_TOKEN_HASH
func main() {
	token := flag.String("token", "", "sync token clients will send in the X-Sync-Token header")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "token not set, use -token")
		os.Exit(1)
	}

	hash, err := pkg.HashPassword(*token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash token: %s\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
