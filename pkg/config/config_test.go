package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	c := Default()
	c.InputPath = "sample.wav"
	require.NoError(t, c.Validate())
}

func TestValidateAcceptsMissingInput(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
}

func TestValidateRejectsJSONAndRawTogether(t *testing.T) {
	c := Default()
	c.InputPath = "sample.wav"
	c.JSON = true
	c.Raw = true
	require.Error(t, c.Validate())
}

func TestValidateRejectsBadBitShift(t *testing.T) {
	c := Default()
	c.InputPath = "sample.wav"
	c.BitShift = 10
	require.Error(t, c.Validate())
}
