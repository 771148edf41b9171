package logger

import (
	"testing"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{in: "debug", want: log.LevelDebug},
		{in: " WARNING ", want: log.LevelWarn},
		{in: "error", want: log.LevelError},
		{in: "trace", want: log.LevelTrace},
		{in: "", want: log.LevelInfo},
		{in: "verbose", want: log.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}
