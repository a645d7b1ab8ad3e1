package dolt_test

import (
	"context"
	"testing"
	"time"

	"github.com/commonplaces/placecore/internal/storage/dolt"
	"github.com/stretchr/testify/require"
)

// Open against a real embedded or server-mode Dolt instance needs the
// dolt engine itself, unavailable in this package's unit test run;
// these tests exercise the connection-string and error-path logic
// that does not require one, mirroring the teacher's nocgo-mode tests
// for the same backend.

func TestOpen_ServerModeUnreachableReturnsConnectionError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := dolt.Open(ctx, dolt.Config{
		ServerMode:  true,
		ServerHost:  "127.0.0.1",
		ServerPort:  1, // nothing listens on a privileged port in CI
		Database:    "placecore",
		OpenTimeout: 500 * time.Millisecond,
	})
	require.Error(t, err)
}

func TestOpen_DefaultsOpenTimeoutAndUser(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// No ServerHost/ServerPort/ServerUser/OpenTimeout supplied: Open
	// must fill in 127.0.0.1:3306/root and a 30s timeout rather than
	// failing on the zero values before it even reaches the network.
	_, err := dolt.Open(ctx, dolt.Config{ServerMode: true, Database: "placecore"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ping dolt db")
}
