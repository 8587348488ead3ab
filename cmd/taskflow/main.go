// Command taskflow runs the TaskFlow task-management API.
//
// @title                       TaskFlow API
// @version                     1.0
// @description                 Personal task management with JWT authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Access token, sent as "Bearer <token>".
package main

import (
	"context"
	"os"

	_ "github.com/taskflow/taskflow-api/docs"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
