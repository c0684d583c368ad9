package main

import (
	"context"

	"github.com/AlibekovAA/recipebook/backend/internal/cli"
)

func main() {
	cli.Execute(context.Background())
}
