package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tickethub/pkg/domain-errors"
)

func TestSignupUserRequestValidate(t *testing.T) {
	req := SignupUserRequest{
		Username:         " alice ",
		Password:         "pw",
		FullName:         "Alice",
		Email:            " Alice@Example.com ",
		Mobile:           "01700",
		NationalID:       "N1",
		BirthCertificate: "B1",
	}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "alice@example.com", req.Email)

	req.Mobile = ""
	req.BirthCertificate = " "
	err := req.Validate()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, "missing required fields: mobile, birthCertificate", dErrors.Message(err))

	req.Mobile, req.BirthCertificate, req.Email = "01700", "B1", "not-an-email"
	assert.Equal(t, "email is invalid", dErrors.Message(req.Validate()))
}

func TestSignupAdminRequestNormalize(t *testing.T) {
	req := SignupAdminRequest{Username: "ops", Password: "pw", AdminName: "Ops", AdminRole: " bus "}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "BUS", req.AdminRole)

	req.AdminRole = ""
	assert.Equal(t, "missing required fields: adminRole", dErrors.Message(req.Validate()))
}
