package errcode

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Stable error codes. The numeric part never changes once released, so the
// codes can be used for log correlation and localization lookups.
const (
	Base64Overflow Code = "B64-00001"

	UnknownAlgorithm Code = "JWA-00001"
	UnknownCurve     Code = "JWA-00002"

	HeaderMalformed       Code = "HDR-00001"
	HeaderReservedName    Code = "HDR-00002"
	HeaderAlgorithm       Code = "HDR-00003"
	HeaderEphemeralKey    Code = "HDR-00004"
	HeaderNegativeCount   Code = "HDR-00005"
	HeaderParameterType   Code = "HDR-00006"
	HeaderMissing         Code = "HDR-00007"
	HeaderParameterValue  Code = "HDR-00008"
	HeaderCertificateItem Code = "HDR-00009"

	MissingFirstDelimiter  Code = "JOSE-00001"
	MissingSecondDelimiter Code = "JOSE-00002"
	MissingFourthDelimiter Code = "JOSE-00003"
	TooManyDelimiters      Code = "JOSE-00004"
	UnknownObjectType      Code = "JOSE-00005"
	SegmentCount           Code = "JOSE-00006"
	PlainSignature         Code = "JOSE-00007"
	EmptyCiphertext        Code = "JOSE-00008"
	NilArgument            Code = "JOSE-00009"
	AlreadySigned          Code = "JOSE-00010"
	NotSigned              Code = "JOSE-00011"
	SerializeUnsigned      Code = "JOSE-00012"
	AlreadyEncrypted       Code = "JOSE-00013"
	NotEncrypted           Code = "JOSE-00014"
	SerializeUnencrypted   Code = "JOSE-00015"
	HeaderSegment          Code = "JOSE-00016"
	FilterNotSupported     Code = "JOSE-00020"
	SignerUnsupported      Code = "JOSE-00021"
	VerifierRejected       Code = "JOSE-00022"
	EncrypterUnsupported   Code = "JOSE-00023"
	DecrypterRejected      Code = "JOSE-00024"
	ProviderFailed         Code = "JOSE-00030"
	PayloadJSON            Code = "JOSE-00031"

	HMACEmptySecret Code = "HMAC-00001"
	HMACAlgorithm   Code = "HMAC-00002"

	AESKeySize   Code = "AES-00001"
	AESMethod    Code = "AES-00002"
	AESOpen      Code = "AES-00003"
	AESAlgorithm Code = "AES-00004"
	AESCipher    Code = "AES-00005"

	KeyMissing        Code = "JWK-00001"
	KeyParameterType  Code = "JWK-00002"
	KeyType           Code = "JWK-00003"
	KeyCurve          Code = "JWK-00004"
	KeyMalformed      Code = "JWK-00005"
	KeyUnsupported    Code = "JWK-00006"
	KeyMaterial       Code = "JWK-00007"
	KeyUse            Code = "JWK-00008"
	KeyOperation      Code = "JWK-00009"
	SetMember         Code = "JWK-00031"
	SetCustomType     Code = "JWK-00032"
	SetMalformed      Code = "JWK-00033"
	SetKeyNotFound    Code = "JWK-00034"
	SetCustomReserved Code = "JWK-00035"
	SetFetch          Code = "JWK-00036"
	SetEmpty          Code = "JWK-00037"
	ThumbprintKey     Code = "JWK-00040"
	ThumbprintHash    Code = "JWK-00041"

	TokenSignature  Code = "JWT-00001"
	TokenIssuer     Code = "JWT-00002"
	TokenAudience   Code = "JWT-00003"
	TokenExpired    Code = "JWT-00004"
	TokenNotYet     Code = "JWT-00005"
	TokenClaimType  Code = "JWT-00006"
	TokenClaims     Code = "JWT-00007"
	TokenAuthHeader Code = "JWT-00008"
	TokenKind       Code = "JWT-00009"
	TokenMissing    Code = "JWT-00010"

	PEMBlock      Code = "PEM-00001"
	PEMPublicKey  Code = "PEM-00002"
	KeyGeneration Code = "KEY-00001"
)

type template struct {
	en string
	de string
}

// templates is the process-wide message table. It is only read after init.
var templates = map[Code]template{
	Base64Overflow: {"encoded length of %d bytes overflows int", "kodierte Länge von %d Bytes überschreitet int"},

	UnknownAlgorithm: {"unexpected algorithm %q", "unerwarteter Algorithmus %q"},
	UnknownCurve:     {"unexpected curve %q", "unerwartete Kurve %q"},

	HeaderMalformed:       {"the header is not a valid JSON object", "der Header ist kein gültiges JSON-Objekt"},
	HeaderReservedName:    {"the parameter name %q matches a reserved name", "der Parametername %q entspricht einem reservierten Namen"},
	HeaderAlgorithm:       {"algorithm %q is not permitted in a %s header", "Algorithmus %q ist in einem %s-Header nicht erlaubt"},
	HeaderEphemeralKey:    {"the ephemeral public key must not be a private key", "der ephemere öffentliche Schlüssel darf kein privater Schlüssel sein"},
	HeaderNegativeCount:   {"the PBES2 count must not be negative, got %d", "der PBES2-Zähler darf nicht negativ sein, erhalten %d"},
	HeaderParameterType:   {"header parameter %q has invalid type %T", "Header-Parameter %q hat ungültigen Typ %T"},
	HeaderMissing:         {"required header parameter %q is missing", "erforderlicher Header-Parameter %q fehlt"},
	HeaderParameterValue:  {"header parameter %q has invalid value %q", "Header-Parameter %q hat ungültigen Wert %q"},
	HeaderCertificateItem: {"the X.509 certificate at position %d must be a Base64 string", "das X.509-Zertifikat an Position %d muss eine Base64-Zeichenkette sein"},

	MissingFirstDelimiter:  {"invalid serialization: missing first delimiter", "ungültige Serialisierung: erstes Trennzeichen fehlt"},
	MissingSecondDelimiter: {"invalid serialization: missing second delimiter", "ungültige Serialisierung: zweites Trennzeichen fehlt"},
	MissingFourthDelimiter: {"invalid serialization: missing fourth delimiter", "ungültige Serialisierung: viertes Trennzeichen fehlt"},
	TooManyDelimiters:      {"invalid serialization: too many delimiters", "ungültige Serialisierung: zu viele Trennzeichen"},
	UnknownObjectType:      {"unexpected object type %q", "unerwarteter Objekttyp %q"},
	SegmentCount:           {"a %s object requires %d segments, found %d", "ein %s-Objekt benötigt %d Segmente, gefunden %d"},
	PlainSignature:         {"a plain object must have an empty signature segment", "ein unsigniertes Objekt muss ein leeres Signatursegment haben"},
	EmptyCiphertext:        {"the cipher text must not be empty", "der Chiffretext darf nicht leer sein"},
	NilArgument:            {"%s must not be nil", "%s darf nicht nil sein"},
	AlreadySigned:          {"the object must be unsigned to be signed, state is %s", "das Objekt muss zum Signieren unsigniert sein, Zustand ist %s"},
	NotSigned:              {"the object must be signed to be verified, state is %s", "das Objekt muss zum Verifizieren signiert sein, Zustand ist %s"},
	SerializeUnsigned:      {"the object must be signed to be serialized, state is %s", "das Objekt muss zum Serialisieren signiert sein, Zustand ist %s"},
	AlreadyEncrypted:       {"the object must be unencrypted to be encrypted, state is %s", "das Objekt muss zum Verschlüsseln unverschlüsselt sein, Zustand ist %s"},
	NotEncrypted:           {"the object must be encrypted to be decrypted, state is %s", "das Objekt muss zum Entschlüsseln verschlüsselt sein, Zustand ist %s"},
	SerializeUnencrypted:   {"the object must be encrypted to be serialized, state is %s", "das Objekt muss zum Serialisieren verschlüsselt sein, Zustand ist %s"},
	HeaderSegment:          {"the header segment could not be parsed", "das Header-Segment konnte nicht gelesen werden"},
	FilterNotSupported:     {"accepted algorithm %q is not supported", "akzeptierter Algorithmus %q wird nicht unterstützt"},
	SignerUnsupported:      {"the signer does not support algorithm %q", "der Signierer unterstützt Algorithmus %q nicht"},
	VerifierRejected:       {"the verifier does not accept algorithm %q", "der Verifizierer akzeptiert Algorithmus %q nicht"},
	EncrypterUnsupported:   {"the encrypter does not support algorithm %q with method %q", "der Verschlüsseler unterstützt Algorithmus %q mit Methode %q nicht"},
	DecrypterRejected:      {"the decrypter does not accept algorithm %q with method %q", "der Entschlüsseler akzeptiert Algorithmus %q mit Methode %q nicht"},
	ProviderFailed:         {"the cryptographic %s operation failed", "die kryptographische %s-Operation ist fehlgeschlagen"},
	PayloadJSON:            {"the payload is not a valid JSON document", "die Nutzlast ist kein gültiges JSON-Dokument"},

	HMACEmptySecret: {"the HMAC secret must not be empty", "das HMAC-Geheimnis darf nicht leer sein"},
	HMACAlgorithm:   {"algorithm %q is not an HMAC algorithm", "Algorithmus %q ist kein HMAC-Algorithmus"},

	AESKeySize:   {"the content encryption key must be %d bytes for %s, got %d", "der Inhaltsschlüssel muss für %[2]s %[1]d Bytes lang sein, erhalten %[3]d"},
	AESMethod:    {"method %q is not an AES-GCM method", "Methode %q ist keine AES-GCM-Methode"},
	AESOpen:      {"the authentication tag does not match", "das Authentifizierungs-Tag stimmt nicht überein"},
	AESAlgorithm: {"key management algorithm %q is not supported", "Schlüsselverwaltungsalgorithmus %q wird nicht unterstützt"},
	AESCipher:    {"the AES-GCM cipher could not be created", "die AES-GCM-Chiffre konnte nicht erzeugt werden"},

	KeyMissing:        {"missing required key parameter %q", "erforderlicher Schlüsselparameter %q fehlt"},
	KeyParameterType:  {"key parameter %q has invalid type %T", "Schlüsselparameter %q hat ungültigen Typ %T"},
	KeyType:           {"unknown key type %q", "unbekannter Schlüsseltyp %q"},
	KeyCurve:          {"invalid curve %q for key type %s", "ungültige Kurve %q für Schlüsseltyp %s"},
	KeyMalformed:      {"the key is not a valid JSON object", "der Schlüssel ist kein gültiges JSON-Objekt"},
	KeyUnsupported:    {"unsupported key type %T", "nicht unterstützter Schlüsseltyp %T"},
	KeyMaterial:       {"invalid key material for parameter %q", "ungültiges Schlüsselmaterial für Parameter %q"},
	KeyUse:            {"invalid key use %q, must be \"sig\" or \"enc\"", "ungültige Schlüsselverwendung %q, erlaubt sind \"sig\" oder \"enc\""},
	KeyOperation:      {"invalid key operation %q", "ungültige Schlüsseloperation %q"},
	SetMember:         {"key set member %d could not be parsed", "Element %d des Schlüsselsatzes konnte nicht gelesen werden"},
	SetCustomType:     {"custom member %q has unsupported type %T", "benutzerdefiniertes Element %q hat nicht unterstützten Typ %T"},
	SetMalformed:      {"the key set is not a valid JSON object", "der Schlüsselsatz ist kein gültiges JSON-Objekt"},
	SetKeyNotFound:    {"the key set does not contain key %q", "der Schlüsselsatz enthält den Schlüssel %q nicht"},
	SetCustomReserved: {"%q is reserved and cannot be a custom member", "%q ist reserviert und kann kein benutzerdefiniertes Element sein"},
	SetFetch:          {"fetching the key set from %s failed", "das Laden des Schlüsselsatzes von %s ist fehlgeschlagen"},
	SetEmpty:          {"the key set contains no keys", "der Schlüsselsatz enthält keine Schlüssel"},
	ThumbprintKey:     {"a thumbprint cannot be computed for key type %q", "für Schlüsseltyp %q kann kein Fingerabdruck berechnet werden"},
	ThumbprintHash:    {"unknown thumbprint hash %q", "unbekannte Hashfunktion %q für den Fingerabdruck"},

	TokenSignature:  {"the token signature is invalid", "die Signatur des Tokens ist ungültig"},
	TokenIssuer:     {"issuer %q is not allowed", "Aussteller %q ist nicht erlaubt"},
	TokenAudience:   {"audience %q is not allowed", "Zielgruppe %q ist nicht erlaubt"},
	TokenExpired:    {"the token expired at %v", "das Token ist am %v abgelaufen"},
	TokenNotYet:     {"the token is not valid before %v", "das Token ist vor %v nicht gültig"},
	TokenClaimType:  {"claim %q has invalid type %T", "Anspruch %q hat ungültigen Typ %T"},
	TokenClaims:     {"the claims set is not a valid JSON object", "der Anspruchssatz ist kein gültiges JSON-Objekt"},
	TokenAuthHeader: {"invalid or missing bearer authorization header", "ungültiger oder fehlender Bearer-Authorization-Header"},
	TokenKind:       {"a token must be a signed object, got %s", "ein Token muss ein signiertes Objekt sein, erhalten %s"},
	TokenMissing:    {"required claim %q is missing", "erforderlicher Anspruch %q fehlt"},

	PEMBlock:      {"no PEM block found", "kein PEM-Block gefunden"},
	PEMPublicKey:  {"PEM block %q does not hold a public key", "PEM-Block %q enthält keinen öffentlichen Schlüssel"},
	KeyGeneration: {"generating %d random bytes failed", "das Erzeugen von %d Zufallsbytes ist fehlgeschlagen"},
}

var (
	bundle         = newBundle()
	defaultPrinter = message.NewPrinter(language.English, message.Catalog(bundle))
)

func newBundle() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for code, t := range templates {
		if err := b.SetString(language.English, string(code), t.en); err != nil {
			panic(fmt.Sprintf("errcode: invalid english template for %s: %v", code, err))
		}
		if err := b.SetString(language.German, string(code), t.de); err != nil {
			panic(fmt.Sprintf("errcode: invalid german template for %s: %v", code, err))
		}
	}
	return b
}

func render(p *message.Printer, e *Error) string {
	if _, ok := templates[e.Code]; !ok {
		return fmt.Sprint(e.Args...)
	}
	return p.Sprintf(string(e.Code), e.Args...)
}

// Languages returns the languages the message table has templates for.
func Languages() []language.Tag {
	return bundle.Languages()
}

// Message renders err for the given language. Errors that are not an *Error
// are rendered with their own Error method.
func Message(err error, tag language.Tag) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	p := message.NewPrinter(tag, message.Catalog(bundle))
	msg := render(p, e)
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, msg, Message(e.Err, tag))
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}
