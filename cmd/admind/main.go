// admind - administration API server for the ScrapHQ data projects.
package main

import (
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch containers

	"github.com/scraphq/admind/pkg/cli"
)

func main() {
	cli.Execute()
}
