// Package localization provides the bilingual (English/Arabic) API message
// catalog. The built-in defaults cover every message the handlers emit;
// deployments can override them with per-language JSON files.
package localization

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// defaults carries the messages the service ships with.
var defaults = map[string]map[string]string{
	"en": {
		"complaint.created":        "Complaint created successfully",
		"complaint.not_found":      "Complaint not found",
		"complaint.status_updated": "Status updated successfully",
		"complaint.assigned":       "Complaint assigned successfully",
		"complaint.unassigned":     "Assignment cleared successfully",
		"complaint.deleted":        "Complaint deleted successfully",
		"department.not_found":     "Department not found",
		"error.forbidden":          "You are not allowed to perform this action",
		"error.invalid_transition": "This status change is not allowed",
		"error.cross_department":   "Staff member not in complaint department",
		"error.directory":          "Staff directory is temporarily unavailable, please retry",
		"error.unauthorized":       "Authentication required",
		"error.internal":           "Internal server error",
	},
	"ar": {
		"complaint.created":        "تم إنشاء الشكوى بنجاح",
		"complaint.not_found":      "الشكوى غير موجودة",
		"complaint.status_updated": "تم تحديث الحالة بنجاح",
		"complaint.assigned":       "تم تعيين الشكوى بنجاح",
		"complaint.unassigned":     "تم إلغاء التعيين بنجاح",
		"complaint.deleted":        "تم حذف الشكوى بنجاح",
		"department.not_found":     "القسم المحدد غير موجود",
		"error.forbidden":          "ليس لديك صلاحية لتنفيذ هذا الإجراء",
		"error.invalid_transition": "لا يمكن الانتقال إلى هذه الحالة",
		"error.cross_department":   "الموظف ليس في قسم الشكوى",
		"error.directory":          "دليل الموظفين غير متاح حالياً",
		"error.unauthorized":       "يجب تسجيل الدخول",
		"error.internal":           "حدث خطأ في الخادم",
	},
}

// Localizer resolves message keys per language.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer returns a Localizer preloaded with the built-in catalog.
func NewLocalizer() *Localizer {
	translations := make(map[string]map[string]string, len(defaults))
	for lang, msgs := range defaults {
		copied := make(map[string]string, len(msgs))
		for k, v := range msgs {
			copied[k] = v
		}
		translations[lang] = copied
	}
	return &Localizer{translations: translations}
}

// LoadDir overlays translations from a directory of JSON files named by
// language code (e.g. "ar.json"). Keys present in a file replace the
// built-in defaults for that language.
func (l *Localizer) LoadDir(path string) error {
	files, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("failed to read localization directory: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(file.Name(), ".json")

		data, err := os.ReadFile(filepath.Join(path, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}
		var overrides map[string]string
		if err := json.Unmarshal(data, &overrides); err != nil {
			return fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		if l.translations[lang] == nil {
			l.translations[lang] = make(map[string]string, len(overrides))
		}
		for k, v := range overrides {
			l.translations[lang][k] = v
		}
	}
	return nil
}

// GetString returns the message for a key and language, falling back to
// English and finally to the key itself.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if msgs, ok := l.translations[lang]; ok {
		if value, ok := msgs[key]; ok {
			return value
		}
	}
	if lang != "en" {
		if msgs, ok := l.translations["en"]; ok {
			if value, ok := msgs[key]; ok {
				return value
			}
		}
	}
	return key
}
