package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"barcraft/internal/engine"
	applog "barcraft/internal/log"
	"barcraft/models"
)

const maxRecipeUploadSize = 5 << 20 // 5 MiB

type importedRecipeLine struct {
	Name     string
	Quantity float64
	Unit     string
}

// recipeLinePattern matches ingredient lines of the form
// "60 ml Vodka", "2 dash Angostura" or "1 leaf Mint".
var recipeLinePattern = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)\s*([a-zA-Z]+)\s+(.+?)\s*$`)

// ToolsImportRecipe ingests a recipe from pasted text or an uploaded
// document. Each parsed line is resolved against the ingredient catalog,
// creating entries for unknown names, and the recipe is persisted with its
// lines in document order.
func ToolsImportRecipe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	userID, ok := currentUserID(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx := r.Context()
	if err := r.ParseMultipartForm(maxRecipeUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		applog.Error(ctx, "failed to parse recipe import form", "error", err)
		writeJSONError(w, http.StatusBadRequest, "upload is too large or invalid")
		return
	}

	name := strings.TrimSpace(r.FormValue("recipe_name"))
	rawText := strings.TrimSpace(r.FormValue("recipe_text"))

	fileName, fileBytes, fileType, err := readRecipeUpload(r)
	if err != nil {
		applog.Error(ctx, "recipe upload read failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to read the uploaded file")
		return
	}
	if len(fileBytes) > 0 {
		extracted, err := deriveTextFromUpload(fileBytes, fileType)
		if err != nil {
			applog.Error(ctx, "failed to extract recipe text", "error", err, "mime", fileType, "file", fileName)
			writeJSONError(w, http.StatusUnprocessableEntity, "unable to interpret the uploaded document")
			return
		}
		if rawText != "" {
			rawText += "\n"
		}
		rawText += extracted
	}

	if strings.TrimSpace(rawText) == "" {
		writeJSONError(w, http.StatusBadRequest, "provide recipe text or upload a document")
		return
	}

	parsed := parseRecipeText(rawText)
	if len(parsed) == 0 {
		writeJSONError(w, http.StatusUnprocessableEntity, "no ingredient lines could be parsed")
		return
	}

	session, err := engineSession(r)
	if err != nil {
		applog.Error(ctx, "failed to build engine session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load catalog")
		return
	}

	lines := make([]models.RecipeIngredient, 0, len(parsed))
	for i, item := range parsed {
		entry, err := session.EnsureIngredient(ctx, &catalogStore{}, item.Name)
		if err != nil {
			if errors.Is(err, engine.ErrUnresolvableIngredient) {
				writeJSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("could not resolve ingredient %q", item.Name))
				return
			}
			applog.Error(ctx, "ingredient resolution failed during import", "error", err, "name", item.Name)
			writeJSONError(w, http.StatusInternalServerError, "unable to resolve ingredients")
			return
		}
		lines = append(lines, models.RecipeIngredient{
			IngredientID: entry.ID,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			SortOrder:    i + 1,
		})
	}

	if name == "" {
		name = "Imported recipe"
	}
	recipe := models.CocktailRecipe{
		CreatedByUserID: userID,
		Name:            name,
		Ingredients:     lines,
	}
	if err := database.WithContext(ctx).Create(&recipe).Error; err != nil {
		applog.Error(ctx, "failed to persist imported recipe", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to save the imported recipe")
		return
	}

	created, err := loadCocktail(ctx, recipe.ID)
	if err != nil {
		applog.Error(ctx, "failed to reload imported recipe", "error", err, "id", recipe.ID)
		writeJSON(w, http.StatusCreated, recipe)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func readRecipeUpload(r *http.Request) (string, []byte, string, error) {
	if r.MultipartForm == nil {
		return "", nil, "", nil
	}
	file, header, err := r.FormFile("recipe_file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, "", nil
		}
		return "", nil, "", err
	}
	defer file.Close()

	if header.Size > maxRecipeUploadSize {
		return "", nil, "", fmt.Errorf("file exceeds %d bytes", maxRecipeUploadSize)
	}

	buf := bytes.NewBuffer(make([]byte, 0, header.Size))
	if _, err := io.Copy(buf, file); err != nil {
		return "", nil, "", err
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = mimeTypeFromName(header.Filename)
	}
	return header.Filename, buf.Bytes(), mime, nil
}

func deriveTextFromUpload(data []byte, mime string) (string, error) {
	lower := strings.ToLower(mime)
	switch {
	case strings.Contains(lower, "pdf"):
		return extractTextFromPDF(data)
	default:
		return string(data), nil
	}
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func mimeTypeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return "text/plain"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// parseRecipeText extracts ingredient lines from free text. Lines that do
// not look like "<quantity> <unit> <name>" are skipped.
func parseRecipeText(text string) []importedRecipeLine {
	var lines []importedRecipeLine
	for _, raw := range strings.Split(text, "\n") {
		match := recipeLinePattern.FindStringSubmatch(raw)
		if match == nil {
			continue
		}
		quantity, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
		if err != nil || quantity <= 0 {
			continue
		}
		lines = append(lines, importedRecipeLine{
			Name:     strings.TrimSpace(match[3]),
			Quantity: quantity,
			Unit:     strings.ToLower(match[2]),
		})
	}
	return lines
}
