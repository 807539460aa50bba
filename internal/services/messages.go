package services

// User-facing messages (Spanish, as shown by the web client)
const (
	msgUnauthorized        = "No autorizado"
	msgAccessDenied        = "Acceso denegado"
	msgExplorersOnly       = "Solo los exploradores pueden dejar reseñas"
	msgAllFieldsRequired   = "Todos los campos son requeridos"
	msgRatingRange         = "La calificación debe estar entre 1 y 5"
	msgCommentTooShort     = "El comentario debe tener al menos 10 caracteres"
	msgCommentTooLong      = "El comentario no puede superar los 500 caracteres"
	msgGuideNotFound       = "Guía no encontrado"
	msgProfileNotFound     = "Perfil no encontrado"
	msgAlreadyReviewed     = "Ya has reseñado a este guía"
	msgInvalidName         = "El nombre debe contener letras o números"
	msgSlugUnavailable     = "No se pudo generar un enlace único para este nombre"
	msgEmailTaken          = "Ya existe una cuenta con este email"
	msgPhoneRequired       = "El teléfono es requerido para guías"
	msgCaptchaFailed       = "Verificación de captcha fallida"
	msgInvalidCredentials  = "Email o contraseña incorrectos"
	msgEmailNotVerified    = "Por favor verifica tu email primero"
	msgInvalidVerification = "Token de verificación inválido o expirado"
	msgInvalidResetToken   = "Token inválido o expirado"
	msgPasswordTooShort    = "La contraseña debe tener al menos 6 caracteres"
	msgTooManyImages       = "Máximo %d imágenes permitidas"
	msgInvalidFileType     = "Tipo de archivo no válido. Use JPG, PNG o WebP"
	msgFileTooLarge        = "El archivo es muy grande. Máximo 5MB"
	msgImageNotFound       = "Imagen no encontrada"
	msgCannotDeleteAdmin   = "No se puede eliminar una cuenta de administrador"

	// MsgRegistered is returned after a successful sign-up
	MsgRegistered = "Registro exitoso. Revisa tu email para verificar tu cuenta."
	// MsgResetRequested is returned by forgot-password whether or not the account exists
	MsgResetRequested = "Si existe una cuenta con este correo, recibirás instrucciones para restablecer tu contraseña."
	// MsgPasswordReset is returned after a successful password reset
	MsgPasswordReset = "Contraseña restablecida exitosamente"
	// MsgEmailVerified is returned after email verification
	MsgEmailVerified = "Email verificado exitosamente"
)
