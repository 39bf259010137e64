package main

import (
	"github.com/sirupsen/logrus"

	"github.com/mr0ak1/social-app/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		logrus.WithError(err).Fatal("Server failed")
	}
}
