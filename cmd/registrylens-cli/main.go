package main

import (
	"context"
	"registrylens-backend/cmd/registrylens-cli/commands"
	"registrylens-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "registrylens-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
