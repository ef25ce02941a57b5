package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargetType(t *testing.T) {
	tt, err := ParseTargetType(" Place ")
	require.NoError(t, err)
	assert.Equal(t, TargetPlace, tt)

	tt, err = ParseTargetType("event")
	require.NoError(t, err)
	assert.Equal(t, TargetEvent, tt)

	_, err = ParseTargetType("places; DROP TABLE users")
	assert.Error(t, err)
	_, err = ParseTargetType("")
	assert.Error(t, err)
}

func TestParseReservationMode(t *testing.T) {
	cases := map[string]ReservationMode{
		"":      ModeNone,
		"none":  ModeNone,
		"outy":  ModeOuty,
		"LINK":  ModeLink,
		"Phone": ModePhone,
	}
	for in, want := range cases {
		got, err := ParseReservationMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseReservationMode("EMAIL")
	assert.Error(t, err)
}

func TestAcceptsReservations(t *testing.T) {
	assert.False(t, ModeNone.AcceptsReservations())
	assert.True(t, ModeOuty.AcceptsReservations())
	assert.True(t, ModeLink.AcceptsReservations())
	assert.True(t, ModePhone.AcceptsReservations())
}

func TestNormalizeRoleAndPublic(t *testing.T) {
	assert.Equal(t, RoleBusiness, NormalizeRole("business"))
	assert.Equal(t, RoleUser, NormalizeRole("admin"))
	assert.Equal(t, RoleUser, NormalizeRole(""))

	name := "Atlas"
	u := User{ID: "u1", Email: "a@b.c", PasswordHash: "secret", Role: RoleBusiness, BusinessName: &name}
	p := u.Public()
	assert.Equal(t, PublicUser{ID: "u1", Email: "a@b.c", Role: RoleBusiness, BusinessName: &name}, p)
}

func TestPlaceDistanceHint(t *testing.T) {
	lat, lng := 33.0, -7.0
	p := Place{Latitude: &lat, Longitude: &lng}
	d := p.DistanceFrom(36.0, -3.0)
	require.NotNil(t, d)
	assert.InDelta(t, 5.0, *d, 1e-9)

	assert.Nil(t, Place{Latitude: &lat}.DistanceFrom(0, 0))
}
