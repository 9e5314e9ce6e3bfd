package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tolelom/ledgerd/ledger"
)

// parseTriggerID inverts ledger.TriggerId.String(): "name" or "name$domain".
func parseTriggerID(s string) ledger.TriggerId {
	if i := strings.IndexByte(s, '$'); i >= 0 {
		return ledger.TriggerId{Name: s[:i], Domain: ledger.DomainId(s[i+1:])}
	}
	return ledger.TriggerId{Name: s}
}

// ErrNotPermitted is the sentinel surfaced as a transaction rejection
// reason (spec.md §7's "Authorization errors").
var ErrNotPermitted = errors.New("authz: not permitted")

// notPermitted wraps ErrNotPermitted with a human-readable reason while
// staying comparable with errors.Is.
func notPermitted(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrNotPermitted)
}

// Policy is the default, swappable authorization module: genesis bypass,
// ownership shortcut, permission-token check (with role expansion), and
// the grant/revoke meta-check. A peer installs one Policy at genesis and
// may replace it wholesale via an Upgrade instruction (spec.md §4.6) —
// modeled here as "construct a new *Policy and swap the pointer the
// engine holds", since Go has no hot-swappable compiled module loading in
// the retrieval pack.
type Policy struct{}

// NewDefaultPolicy returns the baseline policy described by spec.md §4.6.
func NewDefaultPolicy() *Policy { return &Policy{} }

// AuthorizeInstruction decides whether authority may execute instr against
// the state seen through r, at the given block height.
func (p *Policy) AuthorizeInstruction(r Reader, authority ledger.AccountId, height int64, instr ledger.Instruction) error {
	if height == 0 {
		return nil // genesis bypass
	}

	if owner, ok := p.ownerOf(r, instr); ok && owner == authority {
		return nil // ownership shortcut
	}

	name, params, gated := requiredToken(instr)
	if !gated {
		return nil // unoverridden handler falls through to allow
	}

	if name == "CanUpgradeExecutor" {
		// No owner concept for the executor module itself; token-only gate.
	}

	tokens := EffectiveTokens(r, authority)
	for _, t := range tokens {
		if t.Name == name && paramsMatch(t.Params, params) {
			return nil
		}
	}
	return notPermitted(fmt.Sprintf("authority %s lacks token %s%v", authority, name, params))
}

// ownerOf resolves the owning account of instr's target entity, when that
// concept applies (spec.md §4.6 item 2: "the owner of an entity may
// perform any owner-scoped operation on it").
func (p *Policy) ownerOf(r Reader, instr ledger.Instruction) (ledger.AccountId, bool) {
	switch v := instr.(type) {
	case ledger.UnregisterDomain:
		if d, err := r.GetDomain(v.Id); err == nil {
			return d.OwnedBy, true
		}
	case ledger.TransferDomainOwnership:
		if d, err := r.GetDomain(v.Domain); err == nil {
			return d.OwnedBy, true
		}
	case ledger.SetKeyValueDomain:
		if d, err := r.GetDomain(v.Domain); err == nil {
			return d.OwnedBy, true
		}
	case ledger.RemoveKeyValueDomain:
		if d, err := r.GetDomain(v.Domain); err == nil {
			return d.OwnedBy, true
		}
	case ledger.UnregisterAssetDefinition:
		if def, err := r.GetAssetDefinition(v.Id); err == nil {
			return def.OwnedBy, true
		}
	case ledger.TransferAssetDefinitionOwnership:
		if def, err := r.GetAssetDefinition(v.Definition); err == nil {
			return def.OwnedBy, true
		}
	case ledger.SetKeyValueAssetDefinition:
		if def, err := r.GetAssetDefinition(v.Definition); err == nil {
			return def.OwnedBy, true
		}
	case ledger.RemoveKeyValueAssetDefinition:
		if def, err := r.GetAssetDefinition(v.Definition); err == nil {
			return def.OwnedBy, true
		}
	case ledger.MintAssetNumeric:
		if def, err := r.GetAssetDefinition(v.Asset.Definition); err == nil {
			return def.OwnedBy, true
		}
	case ledger.SetKeyValueAsset:
		return v.Asset.Account, true
	case ledger.RemoveKeyValueAsset:
		return v.Asset.Account, true
	case ledger.SetKeyValueAccount:
		return v.Account, true
	case ledger.RemoveKeyValueAccount:
		return v.Account, true
	case ledger.UnregisterAccount:
		return v.Id, true
	case ledger.TransferAssetNumeric:
		return v.Source.Account, true
	case ledger.TransferAssetStore:
		return v.Source.Account, true
	case ledger.BurnAssetNumeric:
		return v.Asset.Account, true
	case ledger.UnregisterTrigger:
		if t, err := r.GetTrigger(v.Id); err == nil {
			return t.Action.Authority, true
		}
	case ledger.ExecuteTriggerInstr:
		if t, err := r.GetTrigger(v.Trigger); err == nil {
			return t.Action.Authority, true
		}
	case ledger.SetKeyValueTrigger:
		if t, err := r.GetTrigger(v.Trigger); err == nil {
			return t.Action.Authority, true
		}
	case ledger.RemoveKeyValueTrigger:
		if t, err := r.GetTrigger(v.Trigger); err == nil {
			return t.Action.Authority, true
		}
	}
	return ledger.AccountId{}, false
}

// AuthorizeGrant implements the grant/revoke meta-check (spec.md §4.6 item
// 6): granting permission requires that the granter could legally perform
// the operation the token itself authorizes. It synthesizes the gated
// instruction the token describes and recurses into AuthorizeInstruction.
func (p *Policy) AuthorizeGrant(r Reader, granter ledger.AccountId, height int64, token ledger.PermissionToken) error {
	synthetic, ok := synthesizeInstruction(token)
	if !ok {
		// Tokens with no synthesizable instruction (e.g. CanUpgradeExecutor)
		// require only that the grantor itself holds the token already.
		for _, t := range EffectiveTokens(r, granter) {
			if t.Name == token.Name {
				return nil
			}
		}
		return notPermitted(fmt.Sprintf("granter %s cannot grant %s: does not itself hold it", granter, token.Name))
	}
	return p.AuthorizeInstruction(r, granter, height, synthetic)
}

// synthesizeInstruction builds a representative instruction from a
// permission token's parameters so the meta-check can reuse the ordinary
// authorization path instead of duplicating its rules.
func synthesizeInstruction(token ledger.PermissionToken) (ledger.Instruction, bool) {
	switch token.Name {
	case "CanUnregisterDomain":
		return ledger.UnregisterDomain{Id: ledger.DomainId(token.Params["domain_id"])}, true
	case "CanUnregisterAccount":
		id, err := ledger.ParseAccountId(token.Params["account_id"])
		if err != nil {
			return nil, false
		}
		return ledger.UnregisterAccount{Id: id}, true
	case "CanUnregisterAssetDefinition":
		id, err := ledger.ParseAssetDefinitionId(token.Params["asset_definition_id"])
		if err != nil {
			return nil, false
		}
		return ledger.UnregisterAssetDefinition{Id: id}, true
	case "CanTransferUserAsset":
		id, err := ledger.ParseAssetId(token.Params["asset_id"])
		if err != nil {
			return nil, false
		}
		return ledger.TransferAssetNumeric{Source: id}, true
	case "CanMintAssetWithDefinition":
		id, err := ledger.ParseAssetDefinitionId(token.Params["asset_definition_id"])
		if err != nil {
			return nil, false
		}
		return ledger.MintAssetNumeric{Asset: ledger.AssetId{Definition: id}}, true
	case "CanBurnAssetWithDefinition":
		id, err := ledger.ParseAssetDefinitionId(token.Params["asset_definition_id"])
		if err != nil {
			return nil, false
		}
		return ledger.BurnAssetNumeric{Asset: ledger.AssetId{Definition: id}}, true
	case "CanExecuteUserTrigger":
		return ledger.ExecuteTriggerInstr{Trigger: parseTriggerID(token.Params["trigger_id"])}, true
	case "CanUnregisterUserTrigger":
		return ledger.UnregisterTrigger{Id: parseTriggerID(token.Params["trigger_id"])}, true
	default:
		return nil, false
	}
}
