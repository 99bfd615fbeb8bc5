package session

import (
	"context"
	"log/slog"

	"github.com/nikitakapustkin/bankctl/pkg/logger"
)

// Surface identifies where a rejected session should be sent.
type Surface string

const (
	SurfaceLogin      Surface = "login"
	SurfaceClientHome Surface = "client"
	SurfaceAdminHome  Surface = "admin"
)

// Redirect is the guard's verdict when a surface may not be shown.
type Redirect struct {
	Target Surface
	Reason string
}

// HomeSurface maps a role to its default landing surface.
func HomeSurface(role Role) Surface {
	if role == RoleAdmin {
		return SurfaceAdminHome
	}
	return SurfaceClientHome
}

// Guard decides whether the holder of the current credential may use a
// role-gated surface. States: no token and undecodable token redirect to
// login (the latter also clears storage so a bad token never lingers for the
// next invocation); a valid token with the wrong role redirects to that
// role's own home surface; otherwise the normalized role is returned and the
// caller proceeds.
type Guard struct {
	session *Session
}

func NewGuard(session *Session) *Guard {
	return &Guard{session: session}
}

func (g *Guard) RequireRole(ctx context.Context, allowed ...Role) (Role, *Redirect, error) {
	token, err := g.session.Token(ctx)
	if err != nil {
		return "", nil, err
	}
	if token == "" {
		return "", &Redirect{Target: SurfaceLogin, Reason: "no active session"}, nil
	}

	claims := DecodeClaims(token)
	if claims == nil {
		if clearErr := g.session.Clear(ctx); clearErr != nil {
			logger.WarnContext(ctx, "failed to clear corrupted session",
				slog.String("error", clearErr.Error()))
		}
		return "", &Redirect{Target: SurfaceLogin, Reason: "session token is corrupted"}, nil
	}

	if len(allowed) > 0 && !roleAllowed(claims.Role, allowed) {
		return "", &Redirect{
			Target: HomeSurface(claims.Role),
			Reason: "role " + string(claims.Role) + " may not use this surface",
		}, nil
	}

	return claims.Role, nil, nil
}

func roleAllowed(role Role, allowed []Role) bool {
	for _, a := range allowed {
		if role == ParseRole(string(a)) {
			return true
		}
	}
	return false
}
