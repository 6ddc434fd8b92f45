// Package grpc provides interceptors that validate bearer session tokens
// carried in gRPC metadata and expose the authenticated subject id to
// service handlers via the context.
package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// DefaultMetadataKeyToken is the metadata key carrying the bearer token
const DefaultMetadataKeyToken = "authorization"

type subjectKey struct{}

// SubjectFromContext returns the authenticated subject id, or "" when the
// request carried no valid token.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(subjectKey{}).(string); ok {
		return v
	}
	return ""
}

// IsAuthenticated reports whether the context carries a validated subject
func IsAuthenticated(ctx context.Context) bool {
	return SubjectFromContext(ctx) != ""
}

func withSubject(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subjectID)
}

// TokenToOutgoingContext attaches a bearer token to an outgoing call
func TokenToOutgoingContext(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, DefaultMetadataKeyToken, "Bearer "+token)
}

// bearerTokens extracts candidate tokens from incoming metadata
func bearerTokens(ctx context.Context, key string) []string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}
	var tokens []string
	for _, value := range md.Get(key) {
		if value == "" {
			continue
		}
		tokens = append(tokens, strings.TrimPrefix(value, "Bearer "))
	}
	return tokens
}
