package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "Mantenimiento el lunes", nil},
		{"single", "Gracias @ana_92!", []string{"ana_92"}},
		{"dedup keeps first order", "@bob @ana @bob", []string{"bob", "ana"}},
		{"drops broadcast token", "@all revisen @carol", []string{"carol"}},
		{"prefix of all is a name", "@allison", []string{"allison"}},
		{"email local part", "escriban a soporte@wifi.zone", []string{"wifi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMentions(tt.content))
		})
	}
}

func TestIsBroadcast(t *testing.T) {
	assert.True(t, IsBroadcast("Atención @all"))
	assert.True(t, IsBroadcast("hola @allison"))
	assert.False(t, IsBroadcast("hola a todos"))
}
