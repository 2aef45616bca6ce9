package adminapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"dammi/internal/knowledge"
)

const maxUploadBytes = 10 << 20

// postQuestionnaire embeds each answered section of the onboarding
// questionnaire into the account's knowledge base. Re-submitting replaces
// earlier answers section by section.
func (a *App) postQuestionnaire(w http.ResponseWriter, r *http.Request) {
	if a.know == nil {
		writeError(w, http.StatusServiceUnavailable, "knowledge store not configured")
		return
	}
	var body struct {
		FullName  string            `json:"full_name"`
		Role      string            `json:"role"`
		Responses map[string]string `json:"responses"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(body.Responses) == 0 {
		writeError(w, http.StatusBadRequest, "missing responses")
		return
	}
	accountID := AccountIDFrom(r.Context())

	embedded := 0
	for key, raw := range body.Responses {
		value := knowledge.SanitizeText(raw)
		if strings.TrimSpace(value) == "" {
			continue
		}
		chunk := knowledge.Chunk{
			AccountID:    accountID,
			SectionTitle: knowledge.SectionTitle(key),
			Content:      value,
		}
		if err := a.know.Upsert(r.Context(), chunk); err != nil {
			a.log.Errorw("questionnaire embed", "account_id", accountID, "section", key, "err", err)
			writeError(w, http.StatusBadGateway, "failed to embed responses")
			return
		}
		embedded++
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "responses embedded",
		"sections": embedded,
	})
}

// postUpload ingests a plain-text document: split into sections, embed
// each, upsert into the knowledge base. Binary formats (PDF, DOCX) are
// extracted by the upstream pipeline before they reach this endpoint.
func (a *App) postUpload(w http.ResponseWriter, r *http.Request) {
	if a.know == nil {
		writeError(w, http.StatusServiceUnavailable, "knowledge store not configured")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".txt" && ext != ".md" {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported file type")
		return
	}
	raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	accountID := AccountIDFrom(r.Context())
	base := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	sections := SplitSections(string(raw))
	for i, section := range sections {
		chunk := knowledge.Chunk{
			AccountID:    accountID,
			SectionTitle: fmt.Sprintf("%s part %d", strings.ToUpper(base), i+1),
			Content:      knowledge.SanitizeText(section),
		}
		if err := a.know.Upsert(r.Context(), chunk); err != nil {
			a.log.Errorw("upload embed", "account_id", accountID, "file", header.Filename, "err", err)
			writeError(w, http.StatusBadGateway, "failed to embed document")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "file uploaded and embedded",
		"chunks":  len(sections),
	})
}

// SplitSections breaks document text into embeddable sections: paragraphs
// merged up to ~1000 characters so each chunk carries enough context for
// retrieval without blowing the embedding input limit.
func SplitSections(text string) []string {
	paragraphs := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	var sections []string
	var cur strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(p) > 1000 {
			sections = append(sections, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(p)
	}
	if cur.Len() > 0 {
		sections = append(sections, cur.String())
	}
	return sections
}
