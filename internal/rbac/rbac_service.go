package rbac

import (
	"strings"
	"sync"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/domain"

	"github.com/casbin/casbin/v2"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService(enforcer *casbin.Enforcer) Service {
	return &service{enforcer: enforcer}
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		return false, nil
	}
	return s.enforcer.Enforce(role, req.Resource, req.Action)
}
