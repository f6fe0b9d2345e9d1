package identity_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/okian/skillmatch/internal/adapters/identity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestVerifier(t *testing.T) {
	Convey("Given a verifier", t, func() {
		v, err := identity.NewVerifier("s3cret")
		So(err, ShouldBeNil)

		Convey("When a token is issued and verified", func() {
			tok, err := v.Issue("u1", "ana@example.com")
			So(err, ShouldBeNil)
			claims, err := v.Verify(tok)

			Convey("Then the claims come back", func() {
				So(err, ShouldBeNil)
				So(claims.ID, ShouldEqual, "u1")
				So(claims.Email, ShouldEqual, "ana@example.com")
				So(claims.ExpiresAt.Sub(claims.IssuedAt.Time), ShouldEqual, identity.DefaultTTL)
			})
		})

		Convey("When the token is signed with another secret", func() {
			other, _ := identity.NewVerifier("other")
			tok, _ := other.Issue("u1", "")
			_, err := v.Verify(tok)
			So(errors.Is(err, identity.ErrInvalidToken), ShouldBeTrue)
		})

		Convey("When the token has expired", func() {
			past := time.Now().Add(-8 * 24 * time.Hour)
			old, _ := identity.NewVerifier("s3cret", identity.WithClock(func() time.Time { return past }))
			tok, _ := old.Issue("u1", "")
			_, err := v.Verify(tok)
			So(errors.Is(err, identity.ErrInvalidToken), ShouldBeTrue)
		})

		Convey("When the token uses another algorithm", func() {
			tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, identity.Claims{ID: "u1"}).SignedString([]byte("s3cret"))
			_, err := v.Verify(tok)
			So(errors.Is(err, identity.ErrInvalidToken), ShouldBeTrue)
		})

		Convey("When the token is empty", func() {
			_, err := v.Verify("")
			So(errors.Is(err, identity.ErrMissingToken), ShouldBeTrue)
		})
	})

	Convey("Given an empty secret", t, func() {
		_, err := identity.NewVerifier("")
		So(errors.Is(err, identity.ErrNoSecret), ShouldBeTrue)
	})
}

func TestFromRequest(t *testing.T) {
	Convey("Given a request carrying a token", t, func() {
		v, _ := identity.NewVerifier("s3cret", identity.WithCookieName("session"))
		tok, _ := v.Issue("u7", "")

		Convey("When it is in the session cookie", func() {
			r := httptest.NewRequest(http.MethodGet, "/match", nil)
			r.AddCookie(&http.Cookie{Name: "session", Value: tok})
			id, err := v.FromRequest(r)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "u7")
		})

		Convey("When it is a bearer header", func() {
			r := httptest.NewRequest(http.MethodGet, "/match", nil)
			r.Header.Set("Authorization", "bearer "+tok)
			id, err := v.FromRequest(r)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "u7")
		})

		Convey("When there is no token", func() {
			r := httptest.NewRequest(http.MethodGet, "/match", nil)
			_, err := v.FromRequest(r)
			So(errors.Is(err, identity.ErrMissingToken), ShouldBeTrue)
		})
	})
}
