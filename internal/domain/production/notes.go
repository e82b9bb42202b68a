package production

import "fmt"

// Notas estándar de los registros de historial.

// SplitSourceNote es la nota del registro del lote original en una división.
func SplitSourceNote(moved int, newStage string) string {
	return fmt.Sprintf("Lote dividido: %d pares movidos a %s", moved, newStage)
}

// SplitChildNote es la nota del registro del lote nuevo en una división.
func SplitChildNote(note string) string {
	return withNote("Lote creado por división", note)
}

// SplitLotNotes son las observaciones con que nace el lote dividido.
func SplitLotNotes(note string) string {
	return withNote("Dividido del lote original", note)
}

// FinalizeNote es la nota del registro de finalización.
func FinalizeNote(note string) string {
	return withNote("Producción finalizada y agregada al stock", note)
}

func withNote(base, note string) string {
	if note == "" {
		return base
	}
	return base + " - " + note
}
