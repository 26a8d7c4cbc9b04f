// Package legal holds the fixed per-structure rules: price, minimum
// capital, minimum associates and the required document checklist.
package legal

import "github.com/diewo77/jurigo/internal/models"

// RequiredDocument is one entry of a structure's checklist.
type RequiredDocument struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Info gathers the rules of one legal structure.
type Info struct {
	Structure         models.LegalStructure `json:"structure"`
	Name              string                `json:"name"`
	FullName          string                `json:"full_name"`
	Price             int64                 `json:"price"`
	MinCapital        int                   `json:"min_capital"`
	MinAssociates     int                   `json:"min_associates"`
	MultiHolder       bool                  `json:"multi_holder"`
	RequiredDocuments []RequiredDocument    `json:"required_documents"`
}

var (
	idPresident           = RequiredDocument{"id_president", "Pièce d'identité du Président"}
	idGerant              = RequiredDocument{"id_gerant", "Pièce d'identité du Gérant"}
	idAssociates          = RequiredDocument{"id_associates", "Pièces d'identité des associés"}
	proofAddressPresident = RequiredDocument{"proof_address_president", "Justificatif de domicile du Président"}
	proofAddressGerant    = RequiredDocument{"proof_address_gerant", "Justificatif de domicile du Gérant"}
	proofAddressCompany   = RequiredDocument{"proof_address_company", "Justificatif de domiciliation de la société"}
	idGeneric             = RequiredDocument{"id", "Pièce d'identité"}
	proofAddressGeneric   = RequiredDocument{"proof_address", "Justificatif de domicile"}
)

var table = map[models.LegalStructure]Info{
	models.StructureSAS: {
		Structure: models.StructureSAS, Name: "SAS", FullName: "Société par Actions Simplifiée",
		Price: 19900, MinCapital: 1, MinAssociates: 2, MultiHolder: true,
		RequiredDocuments: []RequiredDocument{idPresident, idAssociates, proofAddressPresident, proofAddressCompany},
	},
	models.StructureSASU: {
		Structure: models.StructureSASU, Name: "SASU", FullName: "Société par Actions Simplifiée Unipersonnelle",
		Price: 14900, MinCapital: 1, MinAssociates: 1,
		RequiredDocuments: []RequiredDocument{idPresident, proofAddressPresident, proofAddressCompany},
	},
	models.StructureSARL: {
		Structure: models.StructureSARL, Name: "SARL", FullName: "Société à Responsabilité Limitée",
		Price: 19900, MinCapital: 1, MinAssociates: 2, MultiHolder: true,
		RequiredDocuments: []RequiredDocument{idGerant, idAssociates, proofAddressGerant, proofAddressCompany},
	},
	models.StructureEURL: {
		Structure: models.StructureEURL, Name: "EURL", FullName: "Entreprise Unipersonnelle à Responsabilité Limitée",
		Price: 14900, MinCapital: 1, MinAssociates: 1,
		RequiredDocuments: []RequiredDocument{idGerant, proofAddressGerant, proofAddressCompany},
	},
	models.StructureAutoEntrepreneur: {
		Structure: models.StructureAutoEntrepreneur, Name: "Auto-entrepreneur", FullName: "Micro-entreprise",
		Price: 0, MinCapital: 0, MinAssociates: 1,
		RequiredDocuments: []RequiredDocument{idGeneric, proofAddressGeneric},
	},
}

// Valid reports whether s is a known structure.
func Valid(s models.LegalStructure) bool {
	_, ok := table[s]
	return ok
}

// Lookup returns the rules of s.
func Lookup(s models.LegalStructure) (Info, bool) {
	info, ok := table[s]
	if !ok {
		return Info{}, false
	}
	info.RequiredDocuments = append([]RequiredDocument(nil), info.RequiredDocuments...)
	return info, true
}

// All returns the rules of every structure in display order.
func All() []Info {
	out := make([]Info, 0, len(models.LegalStructures))
	for _, s := range models.LegalStructures {
		info, _ := Lookup(s)
		out = append(out, info)
	}
	return out
}

// Price returns the incorporation fee in euro cents. Unknown structures cost 0.
func Price(s models.LegalStructure) int64 { return table[s].Price }

// MinCapital returns the minimum share capital in euros.
func MinCapital(s models.LegalStructure) int { return table[s].MinCapital }

// MinAssociates returns how many share holders the structure needs.
func MinAssociates(s models.LegalStructure) int {
	if n := table[s].MinAssociates; n > 0 {
		return n
	}
	return 1
}

// RequiredDocuments returns the ordered checklist for s, or nil when unknown.
func RequiredDocuments(s models.LegalStructure) []RequiredDocument {
	info, ok := Lookup(s)
	if !ok {
		return nil
	}
	return info.RequiredDocuments
}

// IsRequiredType reports whether docType is on the checklist of s.
func IsRequiredType(s models.LegalStructure, docType string) bool {
	for _, d := range table[s].RequiredDocuments {
		if d.Type == docType {
			return true
		}
	}
	return false
}
