package main

import (
	"errors"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPStatusFromGRPC(t *testing.T) {
	t.Run("InvalidArgument -> 400", func(t *testing.T) {
		err := status.Error(codes.InvalidArgument, "bad")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusBadRequest || gotCode != "INVALID_ARGUMENT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("NotFound -> 404", func(t *testing.T) {
		err := status.Error(codes.NotFound, "missing")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusNotFound || gotCode != "NOT_FOUND" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("Unavailable -> 503", func(t *testing.T) {
		err := status.Error(codes.Unavailable, "down")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("DeadlineExceeded -> 503", func(t *testing.T) {
		err := status.Error(codes.DeadlineExceeded, "timeout")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusServiceUnavailable || gotCode != "UNAVAILABLE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("non-grpc error -> 500", func(t *testing.T) {
		err := errors.New("boom")
		gotStatus, gotCode, _ := httpStatusFromGRPC(err)
		if gotStatus != http.StatusInternalServerError || gotCode != "INTERNAL" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})
}

func TestHTTPStatusFromGRPCDomainCodes(t *testing.T) {
	t.Run("FailedPrecondition -> 409", func(t *testing.T) {
		gotStatus, gotCode, msg := httpStatusFromGRPC(status.Error(codes.FailedPrecondition, "2 item(s) not prepared"))
		if gotStatus != http.StatusConflict || gotCode != "FAILED_PRECONDITION" || msg != "2 item(s) not prepared" {
			t.Fatalf("got (%d,%s,%s)", gotStatus, gotCode, msg)
		}
	})

	t.Run("Unauthenticated -> 401", func(t *testing.T) {
		gotStatus, gotCode, _ := httpStatusFromGRPC(status.Error(codes.Unauthenticated, "no session"))
		if gotStatus != http.StatusUnauthorized || gotCode != "UNAUTHENTICATED" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})
}
