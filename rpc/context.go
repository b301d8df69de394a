package rpc

import (
	"github.com/kyprware/synapse/connregistry"
	"github.com/kyprware/synapse/dbaccess"
	"github.com/kyprware/synapse/jwtauth"
	"github.com/kyprware/synapse/tokenvault"
)

// Context carries the collaborators the built-in handlers operate on.
type Context struct {
	Repository dbaccess.Repository
	Registry   *connregistry.Registry
	Vault      *tokenvault.Vault
	Verifier   *jwtauth.Verifier
}

// NewContext returns a handler context over the given collaborators.
func NewContext(repository dbaccess.Repository, registry *connregistry.Registry,
	vault *tokenvault.Vault, verifier *jwtauth.Verifier) *Context {

	return &Context{
		Repository: repository,
		Registry:   registry,
		Vault:      vault,
		Verifier:   verifier,
	}
}
