package reader

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/nao1215/tallyfetch/internal/model"
	"github.com/xuri/excelize/v2"
)

// writeFile writes content to name inside a temporary directory.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// texts returns the natural representation of values.
func texts(values []model.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

func assertTexts(t *testing.T, got []model.Value, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("expected %d values %q, got %d values %q", len(want), want, len(got), texts(got))
	}
	for i, w := range want {
		if got[i].String() != w {
			t.Errorf("value %d: got %q, want %q", i, got[i].String(), w)
		}
	}
}

func assertFormatError(t *testing.T, err error) {
	t.Helper()

	if err == nil {
		t.Fatal("expected error")
	}
	if model.KindOf(err) != model.ErrorKindFormat {
		t.Errorf("expected format error, got %v (%v)", model.KindOf(err), err)
	}
}

// TestTextReader tests per-character reading.
func TestTextReader(t *testing.T) {
	t.Parallel()

	t.Run("one value per character", func(t *testing.T) {
		t.Parallel()

		values, err := NewTextReader().Read(writeFile(t, "a.txt", "aab"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertTexts(t, values, []string{"a", "a", "b"})
	})

	t.Run("multi-byte characters are single values", func(t *testing.T) {
		t.Parallel()

		values, err := NewTextReader().Read(writeFile(t, "u.txt", "é日"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertTexts(t, values, []string{"é", "日"})
	})

	t.Run("line endings are read as newline", func(t *testing.T) {
		t.Parallel()

		values, err := NewTextReader().Read(writeFile(t, "crlf.txt", "a\r\nb\rc"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertTexts(t, values, []string{"a", "\n", "b", "\n", "c"})
	})

	t.Run("empty file yields no values", func(t *testing.T) {
		t.Parallel()

		values, err := NewTextReader().Read(writeFile(t, "empty.txt", ""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(values) != 0 {
			t.Errorf("expected no values, got %d", len(values))
		}
	})

	t.Run("invalid UTF-8 is a format error", func(t *testing.T) {
		t.Parallel()

		_, err := NewTextReader().Read(writeFile(t, "bad.txt", "a\xffb"))
		assertFormatError(t, err)
		if !errors.Is(err, ErrInvalidUTF8) {
			t.Errorf("expected ErrInvalidUTF8, got %v", err)
		}
	})

	t.Run("absent file is a format error", func(t *testing.T) {
		t.Parallel()

		_, err := NewTextReader().Read(filepath.Join(t.TempDir(), "missing.txt"))
		assertFormatError(t, err)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist in chain, got %v", err)
		}
	})
}

// TestDelimitedReader tests header skipping and row-major flattening.
func TestDelimitedReader(t *testing.T) {
	t.Parallel()

	t.Run("skips header and flattens rows", func(t *testing.T) {
		t.Parallel()

		values, err := NewDelimitedReader().Read(writeFile(t, "a.csv", "x,y\n1,2\n1,3\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertTexts(t, values, []string{"1", "2", "1", "3"})
	})

	t.Run("ragged rows and quoted cells", func(t *testing.T) {
		t.Parallel()

		content := "h1,h2,h3\n\"a,b\",c\nd,e,f\n"
		values, err := NewDelimitedReader().Read(writeFile(t, "r.csv", content))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertTexts(t, values, []string{"a,b", "c", "d", "e", "f"})
	})

	t.Run("header only fails with empty input", func(t *testing.T) {
		t.Parallel()

		values, err := NewDelimitedReader().Read(writeFile(t, "h.csv", "x,y\n"))
		assertFormatError(t, err)
		if !errors.Is(err, model.ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
		if values != nil {
			t.Errorf("expected no values, got %v", texts(values))
		}
	})

	t.Run("empty file fails with empty input", func(t *testing.T) {
		t.Parallel()

		_, err := NewDelimitedReader().Read(writeFile(t, "e.csv", ""))
		assertFormatError(t, err)
		if !errors.Is(err, model.ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("custom delimiter", func(t *testing.T) {
		t.Parallel()

		r := &DelimitedReader{Comma: ';'}
		values, err := r.Read(writeFile(t, "s.csv", "a;b\n1;2\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertTexts(t, values, []string{"1", "2"})
	})

	t.Run("absent file is a format error", func(t *testing.T) {
		t.Parallel()

		_, err := NewDelimitedReader().Read(filepath.Join(t.TempDir(), "missing.csv"))
		assertFormatError(t, err)
	})
}

// writeWorkbook builds an xlsx fixture whose first sheet holds the given
// cells and whose second sheet must be ignored.
func writeWorkbook(t *testing.T, cells map[string]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for axis, v := range cells {
		if err := f.SetCellValue("Sheet1", axis, v); err != nil {
			t.Fatalf("failed to set cell %s: %v", axis, err)
		}
	}
	if _, err := f.NewSheet("Ignored"); err != nil {
		t.Fatalf("failed to add sheet: %v", err)
	}
	if err := f.SetCellValue("Ignored", "A1", "never read"); err != nil {
		t.Fatalf("failed to set cell: %v", err)
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

// TestSpreadsheetReader tests first-sheet reading without header skip.
func TestSpreadsheetReader(t *testing.T) {
	t.Parallel()

	t.Run("reads every row including the first", func(t *testing.T) {
		t.Parallel()

		path := writeWorkbook(t, map[string]any{
			"A1": "x", "B1": "y",
			"A2": "1", "B2": "2",
		})

		values, err := NewSpreadsheetReader().Read(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertTexts(t, values, []string{"x", "y", "1", "2"})
	})

	t.Run("pads rows to the sheet width", func(t *testing.T) {
		t.Parallel()

		path := writeWorkbook(t, map[string]any{
			"A1": "a",
			"A2": "b", "C2": "c",
		})

		values, err := NewSpreadsheetReader().Read(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertTexts(t, values, []string{"a", "", "", "b", "", "c"})
	})

	t.Run("xls reads every row including the first", func(t *testing.T) {
		t.Parallel()

		values, err := NewSpreadsheetReader().Read(filepath.Join("testdata", "table.xls"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"Code", "Name", "Description"}
		for i := 1; i <= 11; i++ {
			n := strconv.Itoa(i)
			want = append(want, "code"+n, "name"+n, "description"+n)
		}
		assertTexts(t, values, want)
	})

	t.Run("xls pads short and missing rows", func(t *testing.T) {
		t.Parallel()

		// row 10 has no record, row 11 declares two cells, row 12 is full
		values, err := NewSpreadsheetReader().Read(filepath.Join("testdata", "ragged.xls"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(values) != 13*3 {
			t.Fatalf("expected %d values, got %d: %q", 13*3, len(values), texts(values))
		}
		assertTexts(t, values[:3], []string{"Code", "Name", "Description"})
		assertTexts(t, values[30:], []string{
			"", "", "",
			"code11", "name11", "",
			"code10", "name10", "description10",
		})
	})

	t.Run("absent file is a format error", func(t *testing.T) {
		t.Parallel()

		_, err := NewSpreadsheetReader().Read(filepath.Join(t.TempDir(), "missing.xls"))
		assertFormatError(t, err)
	})

	t.Run("corrupt xls is a format error", func(t *testing.T) {
		t.Parallel()

		_, err := NewSpreadsheetReader().Read(writeFile(t, "bad.xls", "not a workbook"))
		assertFormatError(t, err)
	})

	t.Run("corrupt xlsx is a format error", func(t *testing.T) {
		t.Parallel()

		_, err := NewSpreadsheetReader().Read(writeFile(t, "bad.xlsx", "not a zip"))
		assertFormatError(t, err)
	})
}

// TestCellValues tests padding and flattening of raw rows.
func TestCellValues(t *testing.T) {
	t.Parallel()

	values := cellValues([][]string{{"a"}, nil, {"b", "c"}})
	assertTexts(t, values, []string{"a", "", "", "", "b", "c"})

	if got := cellValues(nil); len(got) != 0 {
		t.Errorf("expected no values, got %d", len(got))
	}

	trimmed := trimTrailingEmptyRows([][]string{{"a"}, nil, {}})
	if len(trimmed) != 1 {
		t.Errorf("expected 1 row after trimming, got %d", len(trimmed))
	}
}

// TestJSONReader tests flattening of JSON documents.
func TestJSONReader(t *testing.T) {
	t.Parallel()

	t.Run("leaf values in flatten order", func(t *testing.T) {
		t.Parallel()

		values, err := NewJSONReader().Read(writeFile(t, "a.json", `{"a": {"b": 1}, "c": 1}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(values) != 2 {
			t.Fatalf("expected 2 values, got %d", len(values))
		}
		for i, v := range values {
			if v != model.NumberValue("1") {
				t.Errorf("value %d: got %v (%v), want number 1", i, v, v.Kind())
			}
		}
	})

	t.Run("astronauts document", func(t *testing.T) {
		t.Parallel()

		doc := `{"message": "success", "people": [{"name": "A", "craft": "ISS"}], "number": 1}`
		values, err := NewJSONReader().Read(writeFile(t, "astros.json", doc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertTexts(t, values, []string{"success", `[{"name":"A","craft":"ISS"}]`, "1"})
	})

	t.Run("malformed document is a format error", func(t *testing.T) {
		t.Parallel()

		_, err := NewJSONReader().Read(writeFile(t, "bad.json", `{"a": `))
		assertFormatError(t, err)
	})

	t.Run("non-mapping root is a structural error", func(t *testing.T) {
		t.Parallel()

		_, err := NewJSONReader().Read(writeFile(t, "list.json", `[1, 2, 3]`))
		if model.KindOf(err) != model.ErrorKindStructural {
			t.Errorf("expected structural error, got %v", err)
		}
	})

	t.Run("absent file is a format error", func(t *testing.T) {
		t.Parallel()

		_, err := NewJSONReader().Read(filepath.Join(t.TempDir(), "missing.json"))
		assertFormatError(t, err)
	})
}

// TestForFormat tests reader selection.
func TestForFormat(t *testing.T) {
	t.Parallel()

	for _, f := range model.Formats() {
		r, err := ForFormat(f)
		if err != nil {
			t.Errorf("ForFormat(%q): unexpected error %v", f, err)
		}
		if r == nil {
			t.Errorf("ForFormat(%q): nil reader", f)
		}
	}

	if _, err := ForFormat(model.Format("xml")); err == nil {
		t.Error("expected error for unknown format")
	}
}
