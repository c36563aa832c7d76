package main

import (
	"go.uber.org/fx"

	"github.com/fieldmed/supplyline/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
