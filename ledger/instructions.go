package ledger

// InstructionKind tags a concrete Instruction variant. The set is closed:
// the engine's dispatch table (package isi) switches over exactly these.
type InstructionKind string

const (
	KindRegisterDomain          InstructionKind = "RegisterDomain"
	KindRegisterAccount         InstructionKind = "RegisterAccount"
	KindRegisterAssetDefinition InstructionKind = "RegisterAssetDefinition"
	KindRegisterAsset           InstructionKind = "RegisterAsset"
	KindRegisterRole            InstructionKind = "RegisterRole"
	KindRegisterTrigger         InstructionKind = "RegisterTrigger"

	KindUnregisterDomain          InstructionKind = "UnregisterDomain"
	KindUnregisterAccount         InstructionKind = "UnregisterAccount"
	KindUnregisterAssetDefinition InstructionKind = "UnregisterAssetDefinition"
	KindUnregisterRole            InstructionKind = "UnregisterRole"
	KindUnregisterTrigger         InstructionKind = "UnregisterTrigger"

	KindMintAssetNumeric       InstructionKind = "MintAssetNumeric"
	KindMintTriggerRepetitions InstructionKind = "MintTriggerRepetitions"
	KindBurnAssetNumeric       InstructionKind = "BurnAssetNumeric"
	KindBurnTriggerRepetitions InstructionKind = "BurnTriggerRepetitions"

	KindTransferAssetNumeric             InstructionKind = "TransferAssetNumeric"
	KindTransferAssetStore                InstructionKind = "TransferAssetStore"
	KindTransferDomainOwnership            InstructionKind = "TransferDomainOwnership"
	KindTransferAssetDefinitionOwnership   InstructionKind = "TransferAssetDefinitionOwnership"

	KindSetKeyValueAsset           InstructionKind = "SetKeyValueAsset"
	KindSetKeyValueAccount         InstructionKind = "SetKeyValueAccount"
	KindSetKeyValueDomain          InstructionKind = "SetKeyValueDomain"
	KindSetKeyValueAssetDefinition InstructionKind = "SetKeyValueAssetDefinition"
	KindSetKeyValueTrigger         InstructionKind = "SetKeyValueTrigger"

	KindRemoveKeyValueAsset           InstructionKind = "RemoveKeyValueAsset"
	KindRemoveKeyValueAccount         InstructionKind = "RemoveKeyValueAccount"
	KindRemoveKeyValueDomain          InstructionKind = "RemoveKeyValueDomain"
	KindRemoveKeyValueAssetDefinition InstructionKind = "RemoveKeyValueAssetDefinition"
	KindRemoveKeyValueTrigger         InstructionKind = "RemoveKeyValueTrigger"

	KindGrantAccountPermission  InstructionKind = "GrantAccountPermission"
	KindGrantAccountRole        InstructionKind = "GrantAccountRole"
	KindRevokeAccountPermission InstructionKind = "RevokeAccountPermission"
	KindRevokeAccountRole       InstructionKind = "RevokeAccountRole"

	KindExecuteTrigger InstructionKind = "ExecuteTrigger"
	KindSetParameter   InstructionKind = "SetParameter"
	KindNewParameter   InstructionKind = "NewParameter"
	KindUpgrade        InstructionKind = "Upgrade"
	KindFail           InstructionKind = "Fail"
	KindLog            InstructionKind = "Log"
)

// Instruction is implemented by every concrete instruction struct below.
type Instruction interface {
	Kind() InstructionKind
}

type RegisterDomain struct {
	Id      DomainId
	OwnedBy AccountId
}

func (RegisterDomain) Kind() InstructionKind { return KindRegisterDomain }

type RegisterAccount struct{ Id AccountId }

func (RegisterAccount) Kind() InstructionKind { return KindRegisterAccount }

type RegisterAssetDefinition struct {
	Id          AssetDefinitionId
	OwnedBy     AccountId
	ValueKind   ValueKind
	NumericSpec NumericSpec
	Mintable    Mintable
}

func (RegisterAssetDefinition) Kind() InstructionKind { return KindRegisterAssetDefinition }

type RegisterAsset struct {
	Id      AssetId
	Initial AssetValue
}

func (RegisterAsset) Kind() InstructionKind { return KindRegisterAsset }

type RegisterRole struct{ Id RoleId }

func (RegisterRole) Kind() InstructionKind { return KindRegisterRole }

type RegisterTrigger struct {
	Id     TriggerId
	Action Action
}

func (RegisterTrigger) Kind() InstructionKind { return KindRegisterTrigger }

type UnregisterDomain struct{ Id DomainId }

func (UnregisterDomain) Kind() InstructionKind { return KindUnregisterDomain }

type UnregisterAccount struct{ Id AccountId }

func (UnregisterAccount) Kind() InstructionKind { return KindUnregisterAccount }

type UnregisterAssetDefinition struct{ Id AssetDefinitionId }

func (UnregisterAssetDefinition) Kind() InstructionKind { return KindUnregisterAssetDefinition }

type UnregisterRole struct{ Id RoleId }

func (UnregisterRole) Kind() InstructionKind { return KindUnregisterRole }

type UnregisterTrigger struct{ Id TriggerId }

func (UnregisterTrigger) Kind() InstructionKind { return KindUnregisterTrigger }

type MintAssetNumeric struct {
	Asset  AssetId
	Amount Numeric
}

func (MintAssetNumeric) Kind() InstructionKind { return KindMintAssetNumeric }

type MintTriggerRepetitions struct {
	Trigger TriggerId
	Amount  uint32
}

func (MintTriggerRepetitions) Kind() InstructionKind { return KindMintTriggerRepetitions }

type BurnAssetNumeric struct {
	Asset  AssetId
	Amount Numeric
}

func (BurnAssetNumeric) Kind() InstructionKind { return KindBurnAssetNumeric }

type BurnTriggerRepetitions struct {
	Trigger TriggerId
	Amount  uint32
}

func (BurnTriggerRepetitions) Kind() InstructionKind { return KindBurnTriggerRepetitions }

type TransferAssetNumeric struct {
	Source      AssetId
	Amount      Numeric
	Destination AccountId
}

func (TransferAssetNumeric) Kind() InstructionKind { return KindTransferAssetNumeric }

type TransferAssetStore struct {
	Source      AssetId
	Destination AccountId
}

func (TransferAssetStore) Kind() InstructionKind { return KindTransferAssetStore }

type TransferDomainOwnership struct {
	Domain      DomainId
	Destination AccountId
}

func (TransferDomainOwnership) Kind() InstructionKind { return KindTransferDomainOwnership }

type TransferAssetDefinitionOwnership struct {
	Definition  AssetDefinitionId
	Destination AccountId
}

func (TransferAssetDefinitionOwnership) Kind() InstructionKind {
	return KindTransferAssetDefinitionOwnership
}

type SetKeyValueAsset struct {
	Asset AssetId
	Key   string
	Value []byte
}

func (SetKeyValueAsset) Kind() InstructionKind { return KindSetKeyValueAsset }

type SetKeyValueAccount struct {
	Account AccountId
	Key     string
	Value   []byte
}

func (SetKeyValueAccount) Kind() InstructionKind { return KindSetKeyValueAccount }

type SetKeyValueDomain struct {
	Domain DomainId
	Key    string
	Value  []byte
}

func (SetKeyValueDomain) Kind() InstructionKind { return KindSetKeyValueDomain }

type SetKeyValueAssetDefinition struct {
	Definition AssetDefinitionId
	Key        string
	Value      []byte
}

func (SetKeyValueAssetDefinition) Kind() InstructionKind { return KindSetKeyValueAssetDefinition }

type SetKeyValueTrigger struct {
	Trigger TriggerId
	Key     string
	Value   []byte
}

func (SetKeyValueTrigger) Kind() InstructionKind { return KindSetKeyValueTrigger }

type RemoveKeyValueAsset struct {
	Asset AssetId
	Key   string
}

func (RemoveKeyValueAsset) Kind() InstructionKind { return KindRemoveKeyValueAsset }

type RemoveKeyValueAccount struct {
	Account AccountId
	Key     string
}

func (RemoveKeyValueAccount) Kind() InstructionKind { return KindRemoveKeyValueAccount }

type RemoveKeyValueDomain struct {
	Domain DomainId
	Key    string
}

func (RemoveKeyValueDomain) Kind() InstructionKind { return KindRemoveKeyValueDomain }

type RemoveKeyValueAssetDefinition struct {
	Definition AssetDefinitionId
	Key        string
}

func (RemoveKeyValueAssetDefinition) Kind() InstructionKind { return KindRemoveKeyValueAssetDefinition }

type RemoveKeyValueTrigger struct {
	Trigger TriggerId
	Key     string
}

func (RemoveKeyValueTrigger) Kind() InstructionKind { return KindRemoveKeyValueTrigger }

type GrantAccountPermission struct {
	Account AccountId
	Token   PermissionToken
}

func (GrantAccountPermission) Kind() InstructionKind { return KindGrantAccountPermission }

type GrantAccountRole struct {
	Account AccountId
	Role    RoleId
}

func (GrantAccountRole) Kind() InstructionKind { return KindGrantAccountRole }

type RevokeAccountPermission struct {
	Account AccountId
	Token   PermissionToken
}

func (RevokeAccountPermission) Kind() InstructionKind { return KindRevokeAccountPermission }

type RevokeAccountRole struct {
	Account AccountId
	Role    RoleId
}

func (RevokeAccountRole) Kind() InstructionKind { return KindRevokeAccountRole }

// ExecuteTriggerInstr invokes a registered trigger's action under the
// trigger's own authority. Named with an "Instr" suffix to avoid colliding
// with the Trigger entity type.
type ExecuteTriggerInstr struct {
	Trigger TriggerId
}

func (ExecuteTriggerInstr) Kind() InstructionKind { return KindExecuteTrigger }

type SetParameter struct {
	Name  string
	Value string
}

func (SetParameter) Kind() InstructionKind { return KindSetParameter }

type NewParameter struct {
	Name  string
	Value string
}

func (NewParameter) Kind() InstructionKind { return KindNewParameter }

// Upgrade replaces the installed authorization module artifact.
type Upgrade struct {
	ExecutorWasmRef string
}

func (Upgrade) Kind() InstructionKind { return KindUpgrade }

type Fail struct{ Message string }

func (Fail) Kind() InstructionKind { return KindFail }

type Log struct {
	Level   string
	Message string
}

func (Log) Kind() InstructionKind { return KindLog }
