package issuer

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RedRedRyan/NairobiBlockExchange/internal/ledger"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/xerrors"
	"github.com/RedRedRyan/NairobiBlockExchange/pkg/events"
)

// Registry maps company name -> Issuer, and security-token asset -> Issuer
// for O(1) lookup; observable semantics match a linear scan.
type Registry struct {
	mu sync.RWMutex

	owner uuid.UUID

	byCompany  map[string]*Issuer
	bySecurity map[uuid.UUID]*Issuer
	order      []*Issuer

	ledger *ledger.Ledger
	bus    *events.Bus
	logger *zap.Logger
}

// New constructs an empty Registry whose restricted operations are gated by
// owner.
func New(owner uuid.UUID, l *ledger.Ledger, bus *events.Bus, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		owner:      owner,
		byCompany:  make(map[string]*Issuer),
		bySecurity: make(map[uuid.UUID]*Issuer),
		ledger:     l,
		bus:        bus,
		logger:     logger,
	}
}

// DeployIssuer allocates a new security-token asset, mints initialSupply to
// treasury, constructs the Issuer, auto-whitelists treasury (done inside
// NewIssuer), and records the mapping.
func (r *Registry) DeployIssuer(caller uuid.UUID, companyName, tokenSymbol string, initialSupply int64, usdtAsset, treasury uuid.UUID) (*Issuer, error) {
	if caller != r.owner {
		return nil, xerrors.ErrOwnerOnly
	}
	if companyName == "" {
		return nil, xerrors.ErrInvalidAmount
	}
	if initialSupply <= 0 {
		return nil, xerrors.ErrNonPositive
	}

	r.mu.Lock()
	if _, exists := r.byCompany[companyName]; exists {
		r.mu.Unlock()
		return nil, xerrors.ErrDuplicateCompany
	}
	r.mu.Unlock()

	securityToken := uuid.New()
	if err := r.ledger.Mint(securityToken, treasury, initialSupply); err != nil {
		return nil, err
	}

	issuerID := uuid.New()
	iss := NewIssuer(Params{
		ID:            issuerID,
		CompanyName:   companyName,
		SecurityToken: securityToken,
		USDTAsset:     usdtAsset,
		Treasury:      treasury,
		Owner:         caller,
	}, r.ledger, r.bus, r.logger)

	r.mu.Lock()
	r.byCompany[companyName] = iss
	r.bySecurity[securityToken] = iss
	r.order = append(r.order, iss)
	r.mu.Unlock()

	if r.bus != nil {
		r.bus.Publish(events.ExchangeDeployed{Owner: caller, Issuer: issuerID, CompanyName: companyName})
		r.bus.Publish(events.TokenCreated{SecurityToken: securityToken, TokenName: companyName, Symbol: tokenSymbol, InitialSupply: initialSupply})
	}
	return iss, nil
}

// ListIssuers returns every deployed issuer in deployment order.
func (r *Registry) ListIssuers() []*Issuer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Issuer, len(r.order))
	copy(out, r.order)
	return out
}

// LookupByCompany resolves a company name to its Issuer, if any.
func (r *Registry) LookupByCompany(name string) (*Issuer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	iss, ok := r.byCompany[name]
	return iss, ok
}

// LookupBySecurityToken resolves a security-token asset id to its Issuer.
func (r *Registry) LookupBySecurityToken(asset uuid.UUID) (*Issuer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	iss, ok := r.bySecurity[asset]
	return iss, ok
}
