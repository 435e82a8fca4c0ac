package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/onyangohw/hardware_backend/utils"
)

// Mints a service-to-service JWT accepted by the Authorization: Bearer
// middleware. Lifespan comes from TOKEN_HOUR_LIFESPAN, the signing secret
// from API_SECRET, so run it with the same env as the server.
func main() {
	userId := flag.Int("user-id", 0, "user id to embed in the token")
	role := flag.String("role", "staff", "role claim")
	flag.Parse()

	if *userId <= 0 {
		fmt.Fprintln(os.Stderr, "--user-id is required")
		os.Exit(1)
	}

	token, err := utils.JwtGenerate(*userId, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
