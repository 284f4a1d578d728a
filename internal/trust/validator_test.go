package trust

import (
	"crypto/x509"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivoronin/peervet/internal/chain"
	"github.com/ivoronin/peervet/internal/session"
	"github.com/ivoronin/peervet/internal/testutil"
)

// fakeBuilder hands out chains with a fixed outcome and counts how many of
// them are still open.
type fakeBuilder struct {
	trusted bool
	err     error
	certs   []*x509.Certificate
	open    atomic.Int64
}

func (b *fakeBuilder) Build(leaf *x509.Certificate) (*chain.Chain, error) {
	if b.err != nil {
		return nil, b.err
	}
	certs := b.certs
	if certs == nil {
		certs = []*x509.Certificate{leaf}
	}
	b.open.Add(1)
	return chain.New(certs, b.trusted, func() { b.open.Add(-1) }), nil
}

// fakeSession serves a fixed leaf certificate and tracks context releases.
type fakeSession struct {
	leaf     *x509.Certificate
	ctxErr   error
	released atomic.Int64
}

func (s *fakeSession) RemoteContext() (*session.Context, error) {
	if s.ctxErr != nil {
		return nil, s.ctxErr
	}
	if s.leaf == nil {
		return nil, nil
	}
	return session.NewContext(s.leaf.Raw, [][]byte{s.leaf.Raw}, func() {
		s.released.Add(1)
	}), nil
}

func (s *fakeSession) IssuerList() ([]byte, func(), error) {
	return nil, func() {}, nil
}

func testLeaf(t *testing.T) *x509.Certificate {
	t.Helper()
	ca, caKey := testutil.NewCA(t, "Test Root")
	leaf, _ := testutil.NewLeaf(t, "example.com", []string{"example.com"}, ca, caKey)
	return leaf
}

func TestValidateTrusted(t *testing.T) {
	leaf := testLeaf(t)
	engine := &fakeBuilder{trusted: true}
	v := &Validator{Engine: engine}

	errs, err := v.Validate(leaf, true, RoleClient, "example.com")
	require.NoError(t, err)
	assert.True(t, errs.None(), "errs = %v", errs)
	assert.Zero(t, engine.open.Load(), "chain leaked")
}

func TestValidateUntrustedChain(t *testing.T) {
	leaf := testLeaf(t)
	engine := &fakeBuilder{trusted: false}
	v := &Validator{Engine: engine}

	errs, err := v.Validate(leaf, true, RoleClient, "example.com")
	require.NoError(t, err)
	assert.True(t, errs.Has(ChainErrors))
	assert.False(t, errs.Has(NameMismatch))
	assert.Zero(t, engine.open.Load(), "chain leaked")
}

func TestValidateNameMismatch(t *testing.T) {
	leaf := testLeaf(t)
	engine := &fakeBuilder{trusted: true}
	v := &Validator{Engine: engine}

	errs, err := v.Validate(leaf, true, RoleClient, "other.com")
	require.NoError(t, err)
	assert.Equal(t, NameMismatch, errs)
}

func TestValidateBothErrors(t *testing.T) {
	// An untrusted chain is still name-checked, so a peer with a bad chain
	// and a wrong name reports both findings at once.
	leaf := testLeaf(t)
	engine := &fakeBuilder{trusted: false}
	v := &Validator{Engine: engine}

	errs, err := v.Validate(leaf, true, RoleClient, "other.com")
	require.NoError(t, err)
	assert.True(t, errs.Has(ChainErrors|NameMismatch), "errs = %v", errs)
}

func TestValidateNameCheckDisabled(t *testing.T) {
	leaf := testLeaf(t)
	engine := &fakeBuilder{trusted: true}
	v := &Validator{Engine: engine}

	errs, err := v.Validate(leaf, false, RoleClient, "other.com")
	require.NoError(t, err)
	assert.True(t, errs.None(), "errs = %v", errs)
}

func TestValidateEngineFault(t *testing.T) {
	fault := &chain.EngineError{Code: chain.CodeNoAnchors, Err: errors.New("no anchors")}
	engine := &fakeBuilder{err: fault}
	v := &Validator{Engine: engine}

	errs, err := v.Validate(testLeaf(t), true, RoleClient, "example.com")
	require.Error(t, err)

	var engineErr *chain.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, chain.CodeNoAnchors, engineErr.Code)
	assert.True(t, errs.None(), "engine faults must not surface as trust errors")
}

// recordPolicy captures the request it was invoked with.
type recordPolicy struct {
	got    PolicyRequest
	status PolicyStatus
}

func (p *recordPolicy) Verify(ch *chain.Chain, req PolicyRequest) PolicyStatus {
	p.got = req
	return p.status
}

func TestValidateAuthenticatesOppositeParty(t *testing.T) {
	leaf := testLeaf(t)

	tests := []struct {
		name      string
		role      Role
		wantUsage x509.ExtKeyUsage
	}{
		{"client role checks server usage", RoleClient, x509.ExtKeyUsageServerAuth},
		{"server role checks client usage", RoleServer, x509.ExtKeyUsageClientAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := &recordPolicy{status: PolicyOK}
			v := &Validator{Engine: &fakeBuilder{trusted: true}, Policy: policy}

			_, err := v.Validate(leaf, true, tt.role, "example.com")
			require.NoError(t, err)

			assert.Equal(t, tt.wantUsage, policy.got.Usage)
			assert.Equal(t, "example.com", policy.got.Host)
			assert.True(t, policy.got.NameOnly, "validator must restrict policy to the name rule")
		})
	}
}

func TestValidateIgnoresPolicyCheckFailed(t *testing.T) {
	// Only a name mismatch is meaningful; other policy failures are already
	// covered by the chain verdict.
	policy := &recordPolicy{status: PolicyCheckFailed}
	v := &Validator{Engine: &fakeBuilder{trusted: true}, Policy: policy}

	errs, err := v.Validate(testLeaf(t), true, RoleClient, "example.com")
	require.NoError(t, err)
	assert.True(t, errs.None(), "errs = %v", errs)
}

func TestValidateRemote(t *testing.T) {
	leaf := testLeaf(t)
	sess := &fakeSession{leaf: leaf}
	engine := &fakeBuilder{trusted: true}
	v := &Validator{Engine: engine}

	errs, err := v.ValidateRemote(sess, true, RoleClient, "example.com")
	require.NoError(t, err)
	assert.True(t, errs.None(), "errs = %v", errs)
	assert.Equal(t, int64(1), sess.released.Load(), "certificate context must be released exactly once")
}

func TestValidateRemoteNoCertificate(t *testing.T) {
	engine := &fakeBuilder{trusted: true}
	v := &Validator{Engine: engine}

	errs, err := v.ValidateRemote(&fakeSession{}, true, RoleClient, "example.com")
	require.NoError(t, err)
	assert.Equal(t, NotAvailable, errs)
}

func TestValidateRemoteSessionError(t *testing.T) {
	sess := &fakeSession{ctxErr: errors.New("session torn down")}
	v := &Validator{Engine: &fakeBuilder{trusted: true}}

	_, err := v.ValidateRemote(sess, true, RoleClient, "example.com")
	require.Error(t, err)
	assert.ErrorContains(t, err, "session torn down")
}

func TestValidateConcurrent(t *testing.T) {
	leaf := testLeaf(t)
	engine := &fakeBuilder{trusted: false}
	v := &Validator{Engine: engine}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs, err := v.Validate(leaf, true, RoleClient, "other.com")
			if err != nil {
				t.Error(err)
				return
			}
			if !errs.Has(ChainErrors | NameMismatch) {
				t.Errorf("errs = %v", errs)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, engine.open.Load(), "chains leaked across concurrent validations")
}
