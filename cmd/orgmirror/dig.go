package main

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/orgmirror/internal"
	"github.com/rios0rios0/orgmirror/internal/infrastructure/controllers"
)

func injectMirrorController() *controllers.MirrorController {
	container := dig.New()

	if err := internal.RegisterProviders(container); err != nil {
		panic(err)
	}

	var mirrorController *controllers.MirrorController
	if err := container.Invoke(func(mc *controllers.MirrorController) {
		mirrorController = mc
	}); err != nil {
		panic(err)
	}

	return mirrorController
}
