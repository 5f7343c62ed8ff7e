package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lifeflow-api/pkg/jwt"
)

func TestGenerateParse(t *testing.T) {
	token, err := jwt.Generate("s3cret", "admin-1", "admin", "lifeflow", 5)
	require.NoError(t, err)

	userID, role, err := jwt.Parse("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", userID)
	assert.Equal(t, "admin", role)
}

func TestParse_Rechaza(t *testing.T) {
	token, err := jwt.Generate("s3cret", "admin-1", "admin", "lifeflow", 5)
	require.NoError(t, err)

	_, _, err = jwt.Parse("otro", token)
	assert.Error(t, err, "firma incorrecta")

	expired, err := jwt.Generate("s3cret", "admin-1", "admin", "lifeflow", -1)
	require.NoError(t, err)
	_, _, err = jwt.Parse("s3cret", expired)
	assert.Error(t, err, "token expirado")

	_, err = jwt.Generate("", "admin-1", "admin", "lifeflow", 5)
	assert.Error(t, err)
}
