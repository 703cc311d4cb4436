package main

import (
	"github.com/joho/godotenv"

	"letterchat/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
