package main

import "github.com/okian/sitescope/pkg/logger"

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}
