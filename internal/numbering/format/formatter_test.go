package format

import (
	"testing"

	"github.com/smallbiznis/docflow/internal/numbering/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumberDefaultTemplate(t *testing.T) {
	got, err := FormatNumber(DefaultNumberTemplate, "DEV", 2024, 1)
	require.NoError(t, err)
	assert.Equal(t, "DEV-2024/0001", got)

	got, err = FormatNumber(DefaultNumberTemplate, "FAC", 2025, 12345)
	require.NoError(t, err)
	assert.Equal(t, "FAC-2025/12345", got)
}

func TestFormatNumberTokens(t *testing.T) {
	got, err := FormatNumber("{CODE}{YY}-{SEQ}-{SEQ6}", "BL", 2031, 42)
	require.NoError(t, err)
	assert.Equal(t, "BL31-42-000042", got)
}

func TestFormatNumberErrors(t *testing.T) {
	_, err := FormatNumber("", "FAC", 2024, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidTemplate)

	_, err = FormatNumber(DefaultNumberTemplate, "FAC", 2024, 0)
	assert.Error(t, err)

	_, err = FormatNumber(DefaultNumberTemplate, "FAC", 0, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidYear)

	_, err = FormatNumber("{CODE}-{MONTH}-{SEQ}", "FAC", 2024, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidTemplate)
}

func TestValidateTemplate(t *testing.T) {
	assert.NoError(t, ValidateTemplate(DefaultNumberTemplate))
	assert.NoError(t, ValidateTemplate("{CODE}/{YY}/{SEQ}"))

	for _, tpl := range []string{"{YYYY}/{SEQ4}", "{CODE}-{SEQ4}", "{CODE}-{YYYY}", "{CODE}-{YYYY}/{SEQ4}{X}"} {
		assert.ErrorIs(t, ValidateTemplate(tpl), domain.ErrInvalidTemplate, tpl)
	}
}
