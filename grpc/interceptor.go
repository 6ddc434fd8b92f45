package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	ik "github.com/identikit/identikit"
)

// VerifyTokenFunc validates a bearer token and returns its claims
type VerifyTokenFunc func(tokenString string) (*ik.TokenClaims, error)

// InterceptorConfig configures the auth interceptor behavior
type InterceptorConfig struct {
	// VerifyToken validates tokens, typically TokenService.Validate
	VerifyToken VerifyTokenFunc

	// MetadataKeyToken is the metadata key holding the bearer token.
	// Defaults to "authorization".
	MetadataKeyToken string

	// RequireAuth when true rejects unauthenticated requests. When false,
	// requests proceed but SubjectFromContext returns empty.
	RequireAuth bool

	// PublicMethods is a set of full method names ("/package.Service/Method")
	// that skip the auth requirement. Only used when RequireAuth is true.
	PublicMethods map[string]bool
}

// NewInterceptorConfig returns a config that requires auth for all methods
// except the listed public ones.
func NewInterceptorConfig(verify VerifyTokenFunc, publicMethods ...string) *InterceptorConfig {
	config := &InterceptorConfig{
		VerifyToken:   verify,
		RequireAuth:   true,
		PublicMethods: make(map[string]bool),
	}
	for _, method := range publicMethods {
		config.PublicMethods[method] = true
	}
	return config
}

func (c *InterceptorConfig) ensureDefaults() {
	if c.MetadataKeyToken == "" {
		c.MetadataKeyToken = DefaultMetadataKeyToken
	}
	if c.PublicMethods == nil {
		c.PublicMethods = make(map[string]bool)
	}
}

// UnaryAuthInterceptor returns a gRPC unary interceptor that validates the
// bearer token in incoming metadata and puts the subject id on the context.
func UnaryAuthInterceptor(config *InterceptorConfig) grpc.UnaryServerInterceptor {
	config.ensureDefaults()
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		subjectID := config.authenticate(ctx)
		if config.RequireAuth && !config.PublicMethods[info.FullMethod] && subjectID == "" {
			return nil, status.Error(codes.Unauthenticated, "authentication required")
		}
		return handler(withSubject(ctx, subjectID), req)
	}
}

// StreamAuthInterceptor returns the stream counterpart of UnaryAuthInterceptor
func StreamAuthInterceptor(config *InterceptorConfig) grpc.StreamServerInterceptor {
	config.ensureDefaults()
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		subjectID := config.authenticate(ss.Context())
		if config.RequireAuth && !config.PublicMethods[info.FullMethod] && subjectID == "" {
			return status.Error(codes.Unauthenticated, "authentication required")
		}
		return handler(srv, &subjectStream{ServerStream: ss, ctx: withSubject(ss.Context(), subjectID)})
	}
}

// authenticate returns the subject id of the first valid token, or ""
func (c *InterceptorConfig) authenticate(ctx context.Context) string {
	if c.VerifyToken == nil {
		return ""
	}
	for _, token := range bearerTokens(ctx, c.MetadataKeyToken) {
		if claims, err := c.VerifyToken(token); err == nil && claims.SubjectID != "" {
			return claims.SubjectID
		}
	}
	return ""
}

// subjectStream overrides the stream context with the authenticated one
type subjectStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *subjectStream) Context() context.Context {
	return s.ctx
}
