// Command dispatchd serves the emergency dispatch core over HTTP.
//
// @title                       Dispatch Core API
// @version                     1.0
// @description                 Emergency intake, dispatch and position fix acquisition.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
