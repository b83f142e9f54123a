package main

import "github.com/MeKo-Tech/contrastscan/internal/cmd"

func main() {
	cmd.Execute()
}
