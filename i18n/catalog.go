package i18n

var catalogs = map[string]map[string]string{
	LangFR: {
		// validation
		"required":       "Requis",
		"invalid_email":  "Adresse e-mail invalide",
		"invalid_uuid":   "Identifiant invalide",
		"invalid_choice": "Valeur non autorisée",
		"out_of_range":   "Valeur hors limites",
		"too_long":       "Trop long",
		"immutable":      "Ne peut plus être modifié",
		"invalid":        "Valeur invalide",

		// errors
		"unauthorized":        "Authentification requise",
		"forbidden":           "Accès refusé",
		"not_found":           "Introuvable",
		"validation_failed":   "Certains champs sont invalides",
		"invalid_transition":  "Changement de statut non autorisé",
		"unavailable":         "Service momentanément indisponible",
		"invalid_json":        "Requête invalide",
		"invalid_credentials": "E-mail ou mot de passe invalide",
		"email_taken":         "Cette adresse e-mail est déjà utilisée",
		"rate_limited":        "Trop de requêtes, réessayez plus tard",
		"invalid_signature":   "Signature invalide",
		"invalid_token":       "Lien expiré ou invalide",
		"too_large":           "Fichier trop volumineux",
		"internal_error":      "Erreur interne",

		// company statuses
		"status.draft":               "Brouillon",
		"status.pending_payment":     "En attente de paiement",
		"status.paid":                "Payé",
		"status.documents_pending":   "Documents en attente",
		"status.documents_uploaded":  "Documents téléversés",
		"status.under_review":        "En cours de vérification",
		"status.submitted_to_greffe": "Soumis au Greffe",
		"status.completed":           "Terminé",
		"status.rejected":            "Rejeté",

		// document statuses
		"document_status.pending":  "En attente",
		"document_status.approved": "Validé",
		"document_status.rejected": "Refusé",

		// legal structures
		"structure.sas":                    "SAS",
		"structure.sasu":                   "SASU",
		"structure.sarl":                   "SARL",
		"structure.eurl":                   "EURL",
		"structure.auto_entrepreneur":      "Auto-entrepreneur",
		"structure.sas.full":               "Société par Actions Simplifiée",
		"structure.sasu.full":              "Société par Actions Simplifiée Unipersonnelle",
		"structure.sarl.full":              "Société à Responsabilité Limitée",
		"structure.eurl.full":              "Entreprise Unipersonnelle à Responsabilité Limitée",
		"structure.auto_entrepreneur.full": "Micro-entreprise",

		// activity domains
		"domain.consulting_freelance": "Conseil / Freelance",
		"domain.it_web":               "Informatique / Web",
		"domain.services_entreprises": "Services aux entreprises",
		"domain.construction_travaux": "Construction / Travaux",
		"domain.automobile_transport": "Automobile / Transport",
		"domain.vente_en_ligne":       "Vente en ligne",
		"domain.commerce":             "Commerce",
		"domain.achat_revente":        "Achat / Revente",
		"domain.restauration":         "Restauration",
		"domain.services_personne":    "Services à la personne",
		"domain.other":                "Autre",

		// required documents
		"document.id_president":            "Pièce d'identité du Président",
		"document.id_gerant":               "Pièce d'identité du Gérant",
		"document.id_associates":           "Pièces d'identité des associés",
		"document.proof_address_president": "Justificatif de domicile du Président",
		"document.proof_address_gerant":    "Justificatif de domicile du Gérant",
		"document.proof_address_company":   "Justificatif de domiciliation de la société",
		"document.id":                      "Pièce d'identité",
		"document.proof_address":           "Justificatif de domicile",
	},
	LangEN: {
		"required":       "Required",
		"invalid_email":  "Invalid email address",
		"invalid_uuid":   "Invalid identifier",
		"invalid_choice": "Value not allowed",
		"out_of_range":   "Value out of range",
		"too_long":       "Too long",
		"immutable":      "Can no longer be changed",
		"invalid":        "Invalid value",

		"unauthorized":        "Authentication required",
		"forbidden":           "Access denied",
		"not_found":           "Not found",
		"validation_failed":   "Some fields are invalid",
		"invalid_transition":  "Status change not allowed",
		"unavailable":         "Service temporarily unavailable",
		"invalid_json":        "Malformed request",
		"invalid_credentials": "Invalid email or password",
		"email_taken":         "This email address is already in use",
		"rate_limited":        "Too many requests, try again later",
		"invalid_signature":   "Invalid signature",
		"invalid_token":       "Expired or invalid link",
		"too_large":           "File too large",
		"internal_error":      "Internal error",

		"status.draft":               "Draft",
		"status.pending_payment":     "Awaiting payment",
		"status.paid":                "Paid",
		"status.documents_pending":   "Documents pending",
		"status.documents_uploaded":  "Documents uploaded",
		"status.under_review":        "Under review",
		"status.submitted_to_greffe": "Filed with the registry",
		"status.completed":           "Completed",
		"status.rejected":            "Rejected",

		"document_status.pending":  "Pending",
		"document_status.approved": "Approved",
		"document_status.rejected": "Rejected",

		"structure.auto_entrepreneur":      "Sole trader",
		"structure.sas.full":               "Simplified joint-stock company",
		"structure.sasu.full":              "Single-shareholder simplified joint-stock company",
		"structure.sarl.full":              "Limited liability company",
		"structure.eurl.full":              "Single-member limited liability company",
		"structure.auto_entrepreneur.full": "Micro-enterprise",

		"domain.consulting_freelance": "Consulting / Freelance",
		"domain.it_web":               "IT / Web",
		"domain.services_entreprises": "Business services",
		"domain.construction_travaux": "Construction",
		"domain.automobile_transport": "Automotive / Transport",
		"domain.vente_en_ligne":       "E-commerce",
		"domain.commerce":             "Retail",
		"domain.achat_revente":        "Trading",
		"domain.restauration":         "Food service",
		"domain.services_personne":    "Personal services",
		"domain.other":                "Other",

		"document.id_president":            "President's ID",
		"document.id_gerant":               "Manager's ID",
		"document.id_associates":           "Associates' IDs",
		"document.proof_address_president": "President's proof of address",
		"document.proof_address_gerant":    "Manager's proof of address",
		"document.proof_address_company":   "Company domiciliation proof",
		"document.id":                      "ID document",
		"document.proof_address":           "Proof of address",
	},
}
