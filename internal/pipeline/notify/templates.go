// internal/pipeline/notify/templates.go
package notify

import (
	"fmt"

	"cv-screening/internal/pipeline/decide"
)

// renderEmail returns the subject and HTML body for a variant.
func renderEmail(in *Input) (subject, htmlBody string) {
	switch in.Variant {
	case decide.VariantAccepted:
		subject = fmt.Sprintf("Candidature enregistrée - %s", in.JobTitle)
		htmlBody = fmt.Sprintf(`<html><body>
<p>Bonjour %s,</p>
<p>Votre candidature au poste de <strong>%s</strong> a bien été enregistrée.</p>
<p>Votre CV a passé avec succès notre analyse automatique. Votre dossier est
désormais <strong>en cours d'examen</strong> par notre équipe de recrutement.</p>
<p>Référence de votre candidature : <strong>%s</strong></p>
<p>Conservez cette référence pour suivre l'avancement de votre dossier.</p>
<p>Cordialement,<br>L'équipe Ressources Humaines</p>
</body></html>`, in.Recipient.Name, in.JobTitle, in.Reference)

	case decide.VariantRejected:
		subject = fmt.Sprintf("Candidature non retenue - %s", in.JobTitle)
		htmlBody = fmt.Sprintf(`<html><body>
<p>Bonjour %s,</p>
<p>Nous vous remercions de l'intérêt porté au poste de <strong>%s</strong>.</p>
<p>Après analyse de votre CV, nous ne pouvons malheureusement pas donner
suite à votre candidature (référence %s).</p>
<p>Quelques pistes pour améliorer votre CV : détaillez vos expériences avec
dates et responsabilités, mettez en avant vos compétences techniques et
vérifiez la lisibilité du document.</p>
<p>N'hésitez pas à postuler de nouveau.</p>
<p>Cordialement,<br>L'équipe Ressources Humaines</p>
</body></html>`, in.Recipient.Name, in.JobTitle, in.Reference)

	default: // decide.VariantError
		subject = fmt.Sprintf("Candidature reçue - %s", in.JobTitle)
		htmlBody = fmt.Sprintf(`<html><body>
<p>Bonjour %s,</p>
<p>Votre candidature au poste de <strong>%s</strong> a bien été reçue
(référence %s).</p>
<p>L'analyse automatique de votre CV n'a pas pu aboutir. Votre dossier sera
<strong>examiné manuellement</strong> par notre équipe, aucune action n'est
requise de votre part.</p>
<p>Cordialement,<br>L'équipe Ressources Humaines</p>
</body></html>`, in.Recipient.Name, in.JobTitle, in.Reference)
	}
	return subject, htmlBody
}

// renderSMS returns the short plain-text message for a variant.
func renderSMS(in *Input) string {
	switch in.Variant {
	case decide.VariantAccepted:
		return fmt.Sprintf("Votre candidature %s (réf %s) est enregistrée et en cours d'examen.",
			in.JobTitle, in.Reference)
	case decide.VariantRejected:
		return fmt.Sprintf("Votre candidature %s (réf %s) n'a pas été retenue. Merci de votre intérêt.",
			in.JobTitle, in.Reference)
	default:
		return fmt.Sprintf("Votre candidature %s (réf %s) est reçue et sera examinée manuellement.",
			in.JobTitle, in.Reference)
	}
}
