package models

import (
	"fmt"
	"strconv"
	"strings"

	dErrors "garagehub/pkg/domain-errors"
)

// SlotKind names a document slot.
type SlotKind string

const (
	SlotBusinessLicense      SlotKind = "business_license"
	SlotInsuranceCertificate SlotKind = "insurance_certificate"
	SlotIDDocumentFront      SlotKind = "id_document_front"
	SlotIDDocumentBack       SlotKind = "id_document_back"
	SlotUtilityBill          SlotKind = "utility_bill"
	SlotCertification        SlotKind = "certification"
)

// MaxCertifications bounds the certifications collection.
const MaxCertifications = 20

// Slot addresses one document location on a record. Index is only meaningful
// for SlotCertification.
type Slot struct {
	Kind  SlotKind
	Index int
}

type slotAccessor struct {
	get func(*Record) *Document
	set func(*Record, *Document)
}

// fixedSlots is the single source of truth for which record field backs
// each fixed slot.
var fixedSlots = map[SlotKind]slotAccessor{
	SlotBusinessLicense: {
		get: func(r *Record) *Document { return r.BusinessLicenseDocument },
		set: func(r *Record, d *Document) { r.BusinessLicenseDocument = d },
	},
	SlotInsuranceCertificate: {
		get: func(r *Record) *Document { return r.InsuranceCertificate },
		set: func(r *Record, d *Document) { r.InsuranceCertificate = d },
	},
	SlotIDDocumentFront: {
		get: func(r *Record) *Document { return r.IDDocumentFront },
		set: func(r *Record, d *Document) { r.IDDocumentFront = d },
	},
	SlotIDDocumentBack: {
		get: func(r *Record) *Document { return r.IDDocumentBack },
		set: func(r *Record, d *Document) { r.IDDocumentBack = d },
	},
	SlotUtilityBill: {
		get: func(r *Record) *Document { return r.UtilityBill },
		set: func(r *Record, d *Document) { r.UtilityBill = d },
	},
}

// ParseSlot parses "business_license", ..., or "certification[<n>]".
func ParseSlot(raw string) (Slot, error) {
	if _, ok := fixedSlots[SlotKind(raw)]; ok {
		return Slot{Kind: SlotKind(raw)}, nil
	}

	prefix := string(SlotCertification) + "["
	if rest, ok := strings.CutPrefix(raw, prefix); ok {
		if digits, ok := strings.CutSuffix(rest, "]"); ok && digits != "" {
			index, err := strconv.Atoi(digits)
			if err == nil && index >= 0 && index < MaxCertifications {
				return Slot{Kind: SlotCertification, Index: index}, nil
			}
		}
	}
	return Slot{}, dErrors.NewValidation(map[string]string{
		"slot": fmt.Sprintf("unknown document slot %q", raw),
	})
}

func (s Slot) String() string {
	if s.Kind == SlotCertification {
		return fmt.Sprintf("%s[%d]", SlotCertification, s.Index)
	}
	return string(s.Kind)
}

// DocumentAt returns the document currently held by slot, or nil.
func (r *Record) DocumentAt(slot Slot) *Document {
	if slot.Kind == SlotCertification {
		if slot.Index < len(r.Certifications) {
			return r.Certifications[slot.Index].Document
		}
		return nil
	}
	if acc, ok := fixedSlots[slot.Kind]; ok {
		return acc.get(r)
	}
	return nil
}

// CanPutDocument checks that slot is addressable. A certification index may
// replace an existing entry or append at the end, never leave a gap.
func (r *Record) CanPutDocument(slot Slot) error {
	if err := r.CanEdit(); err != nil {
		return err
	}
	if slot.Kind == SlotCertification {
		if slot.Index > len(r.Certifications) {
			return dErrors.NewValidation(map[string]string{
				"slot": fmt.Sprintf("certification index must be at most %d", len(r.Certifications)),
			})
		}
		return nil
	}
	if _, ok := fixedSlots[slot.Kind]; !ok {
		return dErrors.NewValidation(map[string]string{"slot": "unknown document slot"})
	}
	return nil
}

// ApplyPutDocument stores doc in slot and returns the document it replaced.
// certificationName, when non-nil, names the certification entry.
// Call CanPutDocument first.
func (r *Record) ApplyPutDocument(slot Slot, doc *Document, certificationName *string) *Document {
	if slot.Kind != SlotCertification {
		acc := fixedSlots[slot.Kind]
		previous := acc.get(r)
		acc.set(r, doc)
		return previous
	}

	if slot.Index == len(r.Certifications) {
		cert := Certification{Index: slot.Index, Document: doc}
		if certificationName != nil {
			cert.Name = strings.TrimSpace(*certificationName)
		}
		r.Certifications = append(r.Certifications, cert)
		return nil
	}

	cert := &r.Certifications[slot.Index]
	previous := cert.Document
	cert.Document = doc
	if certificationName != nil {
		cert.Name = strings.TrimSpace(*certificationName)
	}
	return previous
}

// ApplyRemoveDocument empties slot and returns the removed document, or nil
// when the slot was already empty. Removing a certification drops the entry
// and renumbers the ones after it.
func (r *Record) ApplyRemoveDocument(slot Slot) *Document {
	if slot.Kind != SlotCertification {
		acc, ok := fixedSlots[slot.Kind]
		if !ok {
			return nil
		}
		previous := acc.get(r)
		acc.set(r, nil)
		return previous
	}

	if slot.Index >= len(r.Certifications) {
		return nil
	}
	previous := r.Certifications[slot.Index].Document
	r.Certifications = append(r.Certifications[:slot.Index], r.Certifications[slot.Index+1:]...)
	for i := range r.Certifications {
		r.Certifications[i].Index = i
	}
	if len(r.Certifications) == 0 {
		r.Certifications = nil
	}
	return previous
}
