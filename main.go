package main

import "github.com/frahmantamala/hr-backoffice/cmd"

func main() {
	cmd.Execute()
}
