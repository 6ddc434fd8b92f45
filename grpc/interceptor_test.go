package grpc

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	ik "github.com/identikit/identikit"
)

func newTestVerifier(t *testing.T) (*ik.TokenService, string) {
	t.Helper()
	svc := ik.NewTokenService("test-secret-key-1234", "identikit-test", 15*time.Minute)
	token, err := svc.Issue("user-123", "a@x.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	return svc, token
}

func incomingContext(token string) context.Context {
	if token == "" {
		return context.Background()
	}
	md := metadata.Pairs(DefaultMetadataKeyToken, "Bearer "+token)
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestUnaryInterceptor(t *testing.T) {
	svc, token := newTestVerifier(t)
	info := &grpc.UnaryServerInfo{FullMethod: "/identity.Identity/Me"}

	tests := []struct {
		name        string
		config      *InterceptorConfig
		token       string
		wantCode    codes.Code
		wantSubject string
	}{
		{
			name:        "valid token",
			config:      NewInterceptorConfig(svc.Validate),
			token:       token,
			wantCode:    codes.OK,
			wantSubject: "user-123",
		},
		{
			name:     "missing token",
			config:   NewInterceptorConfig(svc.Validate),
			token:    "",
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "garbage token",
			config:   NewInterceptorConfig(svc.Validate),
			token:    "not.a.token",
			wantCode: codes.Unauthenticated,
		},
		{
			name:        "public method skips auth",
			config:      NewInterceptorConfig(svc.Validate, "/identity.Identity/Me"),
			token:       "",
			wantCode:    codes.OK,
			wantSubject: "",
		},
		{
			name:        "optional auth lets requests through",
			config:      &InterceptorConfig{VerifyToken: svc.Validate, RequireAuth: false},
			token:       "",
			wantCode:    codes.OK,
			wantSubject: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interceptor := UnaryAuthInterceptor(tt.config)

			var gotSubject string
			handler := func(ctx context.Context, req any) (any, error) {
				gotSubject = SubjectFromContext(ctx)
				return "ok", nil
			}

			_, err := interceptor(incomingContext(tt.token), nil, info, handler)
			if status.Code(err) != tt.wantCode {
				t.Fatalf("expected code %v, got %v (err=%v)", tt.wantCode, status.Code(err), err)
			}
			if tt.wantCode == codes.OK && gotSubject != tt.wantSubject {
				t.Errorf("expected subject %q, got %q", tt.wantSubject, gotSubject)
			}
		})
	}
}

// fakeStream is a minimal ServerStream for interceptor tests
type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *fakeStream) Context() context.Context { return s.ctx }

func TestStreamInterceptor(t *testing.T) {
	svc, token := newTestVerifier(t)
	info := &grpc.StreamServerInfo{FullMethod: "/identity.Identity/Watch"}
	interceptor := StreamAuthInterceptor(NewInterceptorConfig(svc.Validate))

	var gotSubject string
	handler := func(srv any, ss grpc.ServerStream) error {
		gotSubject = SubjectFromContext(ss.Context())
		return nil
	}

	err := interceptor(nil, &fakeStream{ctx: incomingContext(token)}, info, handler)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if gotSubject != "user-123" {
		t.Errorf("expected subject user-123, got %q", gotSubject)
	}

	err = interceptor(nil, &fakeStream{ctx: incomingContext("")}, info, handler)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("expected Unauthenticated, got %v", err)
	}
}

func TestTokenToOutgoingContext(t *testing.T) {
	ctx := TokenToOutgoingContext(context.Background(), "abc")
	md, ok := metadata.FromOutgoingContext(ctx)
	if !ok {
		t.Fatal("expected outgoing metadata")
	}
	values := md.Get(DefaultMetadataKeyToken)
	if len(values) != 1 || values[0] != "Bearer abc" {
		t.Errorf("unexpected metadata: %v", values)
	}
}
