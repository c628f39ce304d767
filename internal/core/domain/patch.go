package domain

import "time"

// Canonical field names, used by the permission policy and by
// FieldLockedError so rejections can name the offending fields.
const (
	FieldPayeeRaw           = "payee_raw"
	FieldDescriptionRaw     = "description_raw"
	FieldCategoryClient     = "category_client"
	FieldModuleHintClient   = "module_hint_client"
	FieldNotesClient        = "notes_client"
	FieldCategoryBookkeeper = "category_bookkeeper"
	FieldTaxCodeBookkeeper  = "tax_code_bookkeeper"
	FieldNotesBookkeeper    = "notes_bookkeeper"
	FieldStatus             = "status"
	FieldFlags              = "flags"
	FieldModuleRouting      = "module_routing"
)

// TransactionPatch is a partial write to a transaction's governed fields.
// Amount and date are deliberately absent; they cannot be patched on any path.
// A nil field means "leave unchanged".
type TransactionPatch struct {
	CategoryBookkeeper *string
	TaxCodeBookkeeper  *TaxCode
	NotesBookkeeper    *string
	Status             *Status
	Flags              *Flags
	ModuleRouting      *ModuleRouting
}

// FieldNames lists the fields the patch touches, in declaration order.
func (p TransactionPatch) FieldNames() []string {
	var names []string
	if p.CategoryBookkeeper != nil {
		names = append(names, FieldCategoryBookkeeper)
	}
	if p.TaxCodeBookkeeper != nil {
		names = append(names, FieldTaxCodeBookkeeper)
	}
	if p.NotesBookkeeper != nil {
		names = append(names, FieldNotesBookkeeper)
	}
	if p.Status != nil {
		names = append(names, FieldStatus)
	}
	if p.Flags != nil {
		names = append(names, FieldFlags)
	}
	if p.ModuleRouting != nil {
		names = append(names, FieldModuleRouting)
	}
	return names
}

// IsEmpty reports whether the patch touches no fields.
func (p TransactionPatch) IsEmpty() bool {
	return len(p.FieldNames()) == 0
}

// TouchesOnlyNotes reports whether notes_bookkeeper is the sole patched field,
// the one write a bookkeeper may make to a LOCKED transaction.
func (p TransactionPatch) TouchesOnlyNotes() bool {
	names := p.FieldNames()
	return len(names) == 1 && names[0] == FieldNotesBookkeeper
}

// Apply writes the patch onto the transaction in place. Lock metadata lives
// only on LOCKED rows, so a status change away from LOCKED clears it.
func (t *Transaction) Apply(p TransactionPatch) {
	if p.CategoryBookkeeper != nil {
		t.CategoryBookkeeper = *p.CategoryBookkeeper
	}
	if p.TaxCodeBookkeeper != nil {
		t.TaxCodeBookkeeper = *p.TaxCodeBookkeeper
	}
	if p.NotesBookkeeper != nil {
		t.NotesBookkeeper = *p.NotesBookkeeper
	}
	if p.Status != nil {
		t.Status = *p.Status
		if *p.Status != StatusLocked {
			t.LockedAt = nil
			t.LockedByRole = ""
		}
	}
	if p.Flags != nil {
		t.Flags = *p.Flags
	}
	if p.ModuleRouting != nil {
		t.ModuleRouting = *p.ModuleRouting
	}
}

// ClientPatch is a partial write to client-origin fields through the client
// channel. It carries no bookkeeper fields and no amount/date.
type ClientPatch struct {
	PayeeRaw         *string
	DescriptionRaw   *string
	CategoryClient   *string
	ModuleHintClient *string
	NotesClient      *string
}

// FieldNames lists the fields the patch touches.
func (p ClientPatch) FieldNames() []string {
	var names []string
	if p.PayeeRaw != nil {
		names = append(names, FieldPayeeRaw)
	}
	if p.DescriptionRaw != nil {
		names = append(names, FieldDescriptionRaw)
	}
	if p.CategoryClient != nil {
		names = append(names, FieldCategoryClient)
	}
	if p.ModuleHintClient != nil {
		names = append(names, FieldModuleHintClient)
	}
	if p.NotesClient != nil {
		names = append(names, FieldNotesClient)
	}
	return names
}

// IsEmpty reports whether the patch touches no fields.
func (p ClientPatch) IsEmpty() bool {
	return len(p.FieldNames()) == 0
}

// ApplyClient writes the client-channel patch onto the transaction in place.
func (t *Transaction) ApplyClient(p ClientPatch) {
	if p.PayeeRaw != nil {
		t.PayeeRaw = *p.PayeeRaw
	}
	if p.DescriptionRaw != nil {
		t.DescriptionRaw = *p.DescriptionRaw
	}
	if p.CategoryClient != nil {
		t.CategoryClient = *p.CategoryClient
	}
	if p.ModuleHintClient != nil {
		t.ModuleHintClient = *p.ModuleHintClient
	}
	if p.NotesClient != nil {
		t.NotesClient = *p.NotesClient
	}
}

// TransactionFilter selects transactions for listing. Zero values mean "any".
type TransactionFilter struct {
	ClientID      string
	Status        Status
	Source        Source
	ModuleRouting ModuleRouting
	Category      string // matches category_bookkeeper
	DateFrom      *time.Time
	DateTo        *time.Time
	FlagLate      *bool
	FlagDuplicate *bool
	FlagHighRisk  *bool
	Search        string // free text over payee/description/notes
}

// BulkCriteria selects the target set of a bulk update. At least one
// criterion must be present.
type BulkCriteria struct {
	ClientID       string
	Status         Status
	Category       string // matches category_bookkeeper
	TransactionIDs []string
	DateFrom       *time.Time
	DateTo         *time.Time
}

// IsEmpty reports whether no criterion is set.
func (c BulkCriteria) IsEmpty() bool {
	return c.ClientID == "" && c.Status == "" && c.Category == "" &&
		len(c.TransactionIDs) == 0 && c.DateFrom == nil && c.DateTo == nil
}
