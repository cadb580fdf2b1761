package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// workshop policy: staff clock themselves in and out, managers
// additionally edit records and manage windows/broadcasts, admin
// inherits everything a manager can do.
var policies = [][]string{
	{"staff", "attendance", "clock"},
	{"staff", "attendance", "read"},
	{"staff", "broadcast", "read"},
	{"manager", "attendance", "edit"},
	{"manager", "break_window", "read"},
	{"manager", "break_window", "manage"},
	{"manager", "broadcast", "manage"},
}

var roleInheritance = [][]string{
	{"manager", "staff"},
	{"admin", "manager"},
}

func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}
	for _, g := range roleInheritance {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}

	return e, nil
}
