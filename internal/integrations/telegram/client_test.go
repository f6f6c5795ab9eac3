package telegram

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	infos []string
	warns []string
}

func (l *recordingLogger) Info(format string, v ...interface{}) {
	l.infos = append(l.infos, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Warn(format string, v ...interface{}) {
	l.warns = append(l.warns, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Error(string, ...interface{}) {}

func TestClient_SendWithoutToken(t *testing.T) {
	tests := []struct {
		name       string
		recipient  int64
		wantErr    error
		wantLogged bool
	}{
		{name: "dry run logs message", recipient: 42, wantLogged: true},
		{name: "zero recipient rejected", recipient: 0, wantErr: ErrInvalidRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{}
			c, err := NewClient("", 0, log)
			require.NoError(t, err)
			require.Len(t, log.warns, 1)

			err = c.Send(context.Background(), tt.recipient, "Освободилось время на 20.08")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			if tt.wantLogged {
				require.Len(t, log.infos, 1)
				assert.Contains(t, log.infos[0], "chat=42")
			} else {
				assert.Empty(t, log.infos)
			}
		})
	}
}
