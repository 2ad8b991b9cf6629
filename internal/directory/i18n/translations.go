package i18n

// Translation maps label keys to localized text.
type Translation map[string]string

// Get returns the text for key, or the key itself when it is missing.
func (t Translation) Get(key string) string {
	if text, ok := t[key]; ok {
		return text
	}
	return key
}

var translations = map[Lang]Translation{
	Turkish: {
		"employeeList":  "Çalışan Listesi",
		"addNew":        "Yeni Ekle",
		"edit":          "Düzenle",
		"delete":        "Sil",
		"actions":       "İşlemler",
		"firstName":     "Ad",
		"lastName":      "Soyad",
		"email":         "E-posta",
		"phone":         "Telefon",
		"department":    "Departman",
		"position":      "Pozisyon",
		"confirmDelete": "Bu çalışan silinecek. Emin misiniz?",
		"confirmUpdate": "Bu çalışan güncellenecek. Emin misiniz?",
		"cancel":        "İptal",
		"confirm":       "Sil",
		"dob":           "Doğum Tarihi",
		"doe":           "İşe Giriş Tarihi",
		"listview":      "Liste Görünümü",
		"tableview":     "Kare Görünümü",
		"previous":      "Geri",
		"next":          "İleri",
		"search":        "Ara...",
		"page":          "Sayfa",
		"noResults":     "Kayıt bulunamadı",

		"errFirstName":    "Ad en az 2 karakter olmalı",
		"errLastName":     "Soyad en az 2 karakter olmalı",
		"errEmail":        "Geçerli bir e-posta girin",
		"errPhone":        "Geçerli bir telefon numarası girin",
		"errDobRequired":  "Doğum tarihi gerekli",
		"errDoeRequired":  "İşe giriş tarihi gerekli",
		"errDoeBeforeDob": "İşe giriş tarihi doğum tarihinden sonra olmalı",
		"errDateFormat":   "Tarih YYYY-AA-GG biçiminde olmalı",
		"errDepartment":   "Geçerli bir departman seçin",
		"errPosition":     "Geçerli bir pozisyon seçin",
		"errNotFound":     "Çalışan bulunamadı",
		"errStorage":      "Kayıt saklanamadı",
	},
	English: {
		"employeeList":  "Employee List",
		"addNew":        "Add New",
		"edit":          "Edit",
		"delete":        "Delete",
		"actions":       "Actions",
		"firstName":     "First Name",
		"lastName":      "Last Name",
		"email":         "Email",
		"phone":         "Phone Number",
		"department":    "Department",
		"position":      "Position",
		"confirmDelete": "This employee will be deleted. Are you sure?",
		"confirmUpdate": "This employee will be updated. Are you sure?",
		"cancel":        "Cancel",
		"confirm":       "Delete",
		"dob":           "Date of Birth",
		"doe":           "Date of Employment",
		"listview":      "List View",
		"tableview":     "Table View",
		"previous":      "Previous",
		"next":          "Next",
		"search":        "Search...",
		"page":          "Page",
		"noResults":     "No employees found",

		"errFirstName":    "First name must be at least 2 characters",
		"errLastName":     "Last name must be at least 2 characters",
		"errEmail":        "Enter a valid email address",
		"errPhone":        "Enter a valid phone number",
		"errDobRequired":  "Date of birth is required",
		"errDoeRequired":  "Date of employment is required",
		"errDoeBeforeDob": "Date of employment must be after date of birth",
		"errDateFormat":   "Date must be in YYYY-MM-DD format",
		"errDepartment":   "Choose a valid department",
		"errPosition":     "Choose a valid position",
		"errNotFound":     "Employee not found",
		"errStorage":      "The change could not be saved",
	},
}

// For returns the table for lang, falling back to Turkish.
func For(lang Lang) Translation {
	if t, ok := translations[lang]; ok {
		return t
	}
	return translations[Turkish]
}
