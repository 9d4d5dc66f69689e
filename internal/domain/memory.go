package domain

import "time"

// Tipos de registro en el store de memoria etiquetado.
const (
	RecordWeaknessProfile = "weakness_profile"
	RecordSessionReport   = "session_report"
	RecordCategoryRecord  = "category_record"
)

// UserRecordTypes son todos los tipos que se borran en un reset de datos del usuario.
var UserRecordTypes = []string{RecordWeaknessProfile, RecordSessionReport, RecordCategoryRecord}

// UserTag construye la etiqueta de contenedor de un usuario.
func UserTag(userName string) string {
	return "user_" + userName
}

// MemoryEntry es un contenido inmutable y con fecha en el store de memoria.
type MemoryEntry struct {
	ID         string            `json:"id"`
	Tag        string            `json:"tag"`
	RecordType string            `json:"record_type"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
