package panorama

// Caller-facing error messages. The upload surface is consumed by a
// German-language tour editor, so the texts stay German by contract.
const (
	msgInvalidUpload = "Ungültiger Upload: Die Datei fehlt, ist zu groß oder hat ein nicht unterstütztes Format."
	msgNoDecodable   = "Die RAW-Datei enthält keine verwendbare Vorschau. Bitte exportieren Sie das Panorama als JPEG oder TIFF und laden Sie es erneut hoch."
	msgUnreadable    = "Die Bilddatei konnte nicht gelesen werden. Bitte laden Sie eine gültige Bilddatei hoch."
	msgStorageFmt    = "Das Panorama konnte nicht gespeichert werden: %s"
	msgInternal      = "Interner Fehler bei der Verarbeitung des Panoramas."
	msgNotFound      = "Panorama nicht gefunden."
	msgNoHistory     = "Die Panorama-Historie ist nicht verfügbar."
	msgBadRequest    = "Ungültige Anfrage."
)
