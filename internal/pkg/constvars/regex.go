package constvars

const (
	RegexNumeric            = `^\d+$`
	RegexPhoneNumberGeneral = `^\+[1-9]\d{7,14}$`
	RegexSKU                = `^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`
)
