package locale

import (
	"golang.org/x/text/language"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Message keys used by the store and the rendering collaborators.
const (
	KeyNewField   = "field.new"
	KeyCopyMarker = "field.copy"
	KeyOption     = "option.default"

	KeyPreviewTitle   = "preview.title"
	KeyPreviewSubmit  = "preview.submit"
	KeyPreviewEmpty   = "preview.empty"
	KeyRequired       = "field.required"
	KeyChoosePrompt   = "select.placeholder"
	KeyDesignerAction = "designer.action"
)

// TypeKey returns the message key holding the palette label of kind.
func TypeKey(kind model.FieldType) string {
	return "type." + string(kind)
}

var brazilian = language.MustParse("pt-BR")

var builtin = Translations{
	KeyNewField:   {language.English: "New %s", brazilian: "Novo %s"},
	KeyCopyMarker: {language.English: "%s (copy)", brazilian: "%s (cópia)"},
	KeyOption:     {language.English: "Option %d", brazilian: "Opção %d"},

	KeyPreviewTitle:   {language.English: "Form Preview", brazilian: "Visualização do Formulário"},
	KeyPreviewSubmit:  {language.English: "Submit", brazilian: "Enviar"},
	KeyPreviewEmpty:   {language.English: "No visible fields", brazilian: "Nenhum campo visível"},
	KeyRequired:       {language.English: "Required", brazilian: "Obrigatório"},
	KeyChoosePrompt:   {language.English: "Select...", brazilian: "Selecione..."},
	KeyDesignerAction: {language.English: "What next?", brazilian: "O que deseja fazer?"},

	TypeKey(model.FieldTypeText):        {language.English: "Text Field", brazilian: "Campo de Texto"},
	TypeKey(model.FieldTypeTextarea):    {language.English: "Text Area", brazilian: "Área de Texto"},
	TypeKey(model.FieldTypeSelect):      {language.English: "Select", brazilian: "Seleção"},
	TypeKey(model.FieldTypeMultiselect): {language.English: "Multi Select", brazilian: "Seleção Múltipla"},
	TypeKey(model.FieldTypeCheckbox):    {language.English: "Checkbox", brazilian: "Checkbox"},
	TypeKey(model.FieldTypeSwitch):      {language.English: "Switch", brazilian: "Switch"},
	TypeKey(model.FieldTypeRadio):       {language.English: "Radio Group", brazilian: "Radio Group"},
	TypeKey(model.FieldTypeFile):        {language.English: "File", brazilian: "Arquivo"},
	TypeKey(model.FieldTypeImage):       {language.English: "Image", brazilian: "Imagem"},
	TypeKey(model.FieldTypeDate):        {language.English: "Date", brazilian: "Data"},
	TypeKey(model.FieldTypeTime):        {language.English: "Time", brazilian: "Hora"},
	TypeKey(model.FieldTypeDatetime):    {language.English: "Date and Time", brazilian: "Data e Hora"},
}

// TypeLabel returns the palette label for kind.
func TypeLabel(t Translator, locale string, kind model.FieldType) string {
	return Text(t, locale, TypeKey(kind))
}
