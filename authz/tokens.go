package authz

import "github.com/tolelom/ledgerd/ledger"

// TokenSchema describes one recognized permission-token name: which
// parameter keys it carries. Exposed to clients via
// ledger.FindPermissionTokenSchema so a Grant can be validated before
// submission (SPEC_FULL.md §4 item 3).
type TokenSchema struct {
	Name   string
	Params []string
}

// registeredTokens is the closed enumeration spec.md §4.6 item 3 requires.
// Each entry's Params lists the parameter keys requiredToken below binds
// from the gated instruction.
var registeredTokens = []TokenSchema{
	{Name: "CanUnregisterDomain", Params: []string{"domain_id"}},
	{Name: "CanUnregisterAccount", Params: []string{"account_id"}},
	{Name: "CanUnregisterAssetDefinition", Params: []string{"asset_definition_id"}},
	{Name: "CanTransferUserAsset", Params: []string{"asset_id"}},
	{Name: "CanMintAssetWithDefinition", Params: []string{"asset_definition_id"}},
	{Name: "CanBurnAssetWithDefinition", Params: []string{"asset_definition_id"}},
	{Name: "CanSetKeyValueInAsset", Params: []string{"asset_id"}},
	{Name: "CanRemoveKeyValueInAsset", Params: []string{"asset_id"}},
	{Name: "CanSetKeyValueInAccount", Params: []string{"account_id"}},
	{Name: "CanSetKeyValueInDomain", Params: []string{"domain_id"}},
	{Name: "CanExecuteUserTrigger", Params: []string{"trigger_id"}},
	{Name: "CanUnregisterUserTrigger", Params: []string{"trigger_id"}},
	{Name: "CanUpgradeExecutor", Params: nil},
	{Name: "CanRegisterAssetDefinitionInDomain", Params: []string{"domain_id"}},
	{Name: "CanRegisterAccountInDomain", Params: []string{"domain_id"}},
	{Name: "CanGrantPermissionToCreateNewRoles", Params: nil},
}

// Schemas returns the closed token enumeration for introspection.
func Schemas() []TokenSchema {
	out := make([]TokenSchema, len(registeredTokens))
	copy(out, registeredTokens)
	return out
}

// IsRegistered reports whether name is one of the recognized token types,
// matching spec.md invariant 5 ("every permission token held by an
// account is recognized").
func IsRegistered(name string) bool {
	for _, t := range registeredTokens {
		if t.Name == name {
			return true
		}
	}
	return false
}

// requiredToken returns the token (name + parameter bindings) that would
// authorize instr when the authority is not the entity's owner, and
// whether instr is gated by a token at all (unoverridden handlers fall
// through to allow per spec.md §4.6).
func requiredToken(instr ledger.Instruction) (name string, params map[string]string, gated bool) {
	switch v := instr.(type) {
	case ledger.UnregisterDomain:
		return "CanUnregisterDomain", map[string]string{"domain_id": v.Id.String()}, true
	case ledger.UnregisterAccount:
		return "CanUnregisterAccount", map[string]string{"account_id": v.Id.String()}, true
	case ledger.UnregisterAssetDefinition:
		return "CanUnregisterAssetDefinition", map[string]string{"asset_definition_id": v.Id.String()}, true
	case ledger.TransferAssetNumeric:
		return "CanTransferUserAsset", map[string]string{"asset_id": v.Source.String()}, true
	case ledger.TransferAssetStore:
		return "CanTransferUserAsset", map[string]string{"asset_id": v.Source.String()}, true
	case ledger.MintAssetNumeric:
		return "CanMintAssetWithDefinition", map[string]string{"asset_definition_id": v.Asset.Definition.String()}, true
	case ledger.BurnAssetNumeric:
		return "CanBurnAssetWithDefinition", map[string]string{"asset_definition_id": v.Asset.Definition.String()}, true
	case ledger.SetKeyValueAsset:
		return "CanSetKeyValueInAsset", map[string]string{"asset_id": v.Asset.String()}, true
	case ledger.RemoveKeyValueAsset:
		return "CanRemoveKeyValueInAsset", map[string]string{"asset_id": v.Asset.String()}, true
	case ledger.SetKeyValueAccount:
		return "CanSetKeyValueInAccount", map[string]string{"account_id": v.Account.String()}, true
	case ledger.SetKeyValueDomain:
		return "CanSetKeyValueInDomain", map[string]string{"domain_id": v.Domain.String()}, true
	case ledger.ExecuteTriggerInstr:
		return "CanExecuteUserTrigger", map[string]string{"trigger_id": v.Trigger.String()}, true
	case ledger.UnregisterTrigger:
		return "CanUnregisterUserTrigger", map[string]string{"trigger_id": v.Id.String()}, true
	case ledger.Upgrade:
		return "CanUpgradeExecutor", nil, true
	case ledger.RegisterAssetDefinition:
		return "CanRegisterAssetDefinitionInDomain", map[string]string{"domain_id": v.Id.Domain.String()}, true
	case ledger.RegisterAccount:
		return "CanRegisterAccountInDomain", map[string]string{"domain_id": v.Id.Domain.String()}, true
	default:
		return "", nil, false
	}
}
