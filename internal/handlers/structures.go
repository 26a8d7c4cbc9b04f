package handlers

import (
	"net/http"

	"github.com/diewo77/jurigo/httpx"
	"github.com/diewo77/jurigo/i18n"
	"github.com/diewo77/jurigo/internal/legal"
	"github.com/diewo77/jurigo/internal/models"
)

type structureView struct {
	legal.Info
	Label string `json:"label"`
}

type domainView struct {
	Value models.ActivityDomain `json:"value"`
	Label string                `json:"label"`
}

// Structures serves the read-only catalog of legal structures and
// activity domains, localized.
func Structures(w http.ResponseWriter, r *http.Request) {
	lang := i18n.LangFromContext(r.Context())

	infos := legal.All()
	structures := make([]structureView, len(infos))
	for i, info := range infos {
		info.FullName = i18n.StructureFullName(lang, string(info.Structure))
		for j := range info.RequiredDocuments {
			info.RequiredDocuments[j].Label = i18n.DocumentLabel(lang, info.RequiredDocuments[j].Type)
		}
		structures[i] = structureView{Info: info, Label: i18n.StructureLabel(lang, string(info.Structure))}
	}

	domains := make([]domainView, len(models.ActivityDomains))
	for i, d := range models.ActivityDomains {
		domains[i] = domainView{Value: d, Label: i18n.DomainLabel(lang, string(d))}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"structures": structures, "activity_domains": domains})
}
