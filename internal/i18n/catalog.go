package i18n

var catalogs = map[string]map[string]string{
	English: {
		"app.name":    "Mi Bolsillo",
		"app.tagline": "Track your spending in soles and dollars",

		"nav.home":         "Home",
		"nav.statistics":   "Statistics",
		"nav.linkTelegram": "Link Telegram",
		"nav.signOut":      "Sign out",
		"lang.toggle":      "Español",
		"footer.text":      "Mi Bolsillo · Personal finance made simple",

		"common.loading": "Loading...",
		"common.cancel":  "Cancel",
		"common.delete":  "Delete",
		"common.back":    "Back to bills",
		"common.retry":   "Retry",

		"auth.signInTitle":   "Sign in to Mi Bolsillo",
		"auth.signUpTitle":   "Create your Mi Bolsillo account",
		"auth.noAccount":     "Don't have an account?",
		"auth.haveAccount":   "Already have an account?",
		"auth.signIn":        "Sign in",
		"auth.signUp":        "Sign up",
		"auth.restoring":     "Restoring your session...",
		"auth.signingOut":    "Signing out...",
		"auth.notConfigured": "Sign-in is not configured on this server.",
		"auth.expired":       "Your session has expired. Please sign in again.",

		"dashboard.title":         "My Bills",
		"dashboard.newBill":       "New Bill",
		"dashboard.empty":         "No bills yet. Create your first one!",
		"dashboard.errorLoad":     "Failed to load bills",
		"dashboard.errorDelete":   "Failed to delete bill",
		"dashboard.confirmDelete": "Are you sure you want to delete this bill?",

		"bill.expenseCount": "%d expenses",
		"bill.showExpenses": "Show expenses",
		"bill.hideExpenses": "Hide expenses",
		"bill.viewDetails":  "View details",
		"bill.noExpenses":   "This bill has no expenses",
		"bill.description":  "Description",
		"bill.category":     "Category",
		"bill.date":         "Date",
		"bill.currency":     "Currency",
		"bill.exchangeRate": "Exchange rate (PEN per USD)",
		"bill.amount":       "Amount",
		"bill.totalPen":     "Total (PEN)",
		"bill.totalUsd":     "Total (USD)",
		"bill.rate":         "Rate",
		"bill.created":      "Created",

		"billDetail.title":     "Bill details",
		"billDetail.errorLoad": "Failed to load bill",
		"billDetail.notFound":  "Bill not found",
		"billDetail.expenses":  "Expenses",

		"create.title":                  "Create New Bill",
		"create.descriptionPlaceholder": "e.g., Groceries, Restaurant Bill",
		"create.categoryPlaceholder":    "e.g., Food",
		"create.expenses":               "Expenses",
		"create.addExpense":             "+ Add Expense",
		"create.expenseName":            "Expense name",
		"create.amountPlaceholder":      "Amount",
		"create.categoryOptional":       "Category (optional)",
		"create.removeExpense":          "Remove expense",
		"create.total":                  "Total",
		"create.submit":                 "Create Bill",
		"create.submitting":             "Creating...",
		"create.errorNoExpenses":        "Please add at least one expense with a name and amount",
		"create.errorRequired":          "Please fill in the description, category, date, currency and exchange rate",
		"create.errorCreate":            "Failed to create bill",

		"statistics.title":      "Statistics",
		"statistics.showLast":   "Show last",
		"statistics.months":     "months",
		"statistics.errorLoad":  "Failed to load statistics",
		"statistics.errorChart": "This chart could not be drawn",
		"statistics.totalPen":   "Total Spent (PEN)",
		"statistics.totalUsd":   "Total Spent (USD)",
		"statistics.totalBills": "Total Bills",
		"statistics.average":    "Average per Bill",
		"statistics.monthly":    "Monthly Spending",
		"statistics.weekly":     "Weekly Spending",
		"statistics.byCategory": "Spending by Category",
		"statistics.noData":     "No statistics available yet",
		"statistics.billCount":  "%d bills",

		"link.title":           "Link Telegram Account",
		"link.statusLinked":    "Your account is linked to Telegram",
		"link.statusNotLinked": "Your account is not linked to Telegram yet",
		"link.telegramId":      "Telegram ID: %d",
		"link.howTo":           "How to link your account",
		"link.step1":           "Open Telegram and start a chat with @%s",
		"link.step2":           "Send the /link command to get a 6-digit code",
		"link.step3":           "Enter the code below",
		"link.openBot":         "Open @%s",
		"link.codeLabel":       "Verification code",
		"link.verify":          "Verify code",
		"link.verifying":       "Verifying...",
		"link.errorInvalid":    "Please enter a valid 6-digit code",
		"link.errorVerify":     "Failed to verify OTP code. Please try again.",
		"link.success":         "Your Telegram account was linked successfully",
		"link.errorStatus":     "Failed to load link status",

		"error.generic":     "Something went wrong. Please try again.",
		"error.rateLimited": "Too many requests. Please wait a moment and try again.",
	},
	Spanish: {
		"app.name":    "Mi Bolsillo",
		"app.tagline": "Controla tus gastos en soles y dólares",

		"nav.home":         "Inicio",
		"nav.statistics":   "Estadísticas",
		"nav.linkTelegram": "Vincular Telegram",
		"nav.signOut":      "Cerrar sesión",
		"lang.toggle":      "English",
		"footer.text":      "Mi Bolsillo · Finanzas personales simples",

		"common.loading": "Cargando...",
		"common.cancel":  "Cancelar",
		"common.delete":  "Eliminar",
		"common.back":    "Volver a las cuentas",
		"common.retry":   "Reintentar",

		"auth.signInTitle":   "Inicia sesión en Mi Bolsillo",
		"auth.signUpTitle":   "Crea tu cuenta de Mi Bolsillo",
		"auth.noAccount":     "¿No tienes una cuenta?",
		"auth.haveAccount":   "¿Ya tienes una cuenta?",
		"auth.signIn":        "Inicia sesión",
		"auth.signUp":        "Regístrate",
		"auth.restoring":     "Restaurando tu sesión...",
		"auth.signingOut":    "Cerrando sesión...",
		"auth.notConfigured": "El inicio de sesión no está configurado en este servidor.",
		"auth.expired":       "Tu sesión expiró. Vuelve a iniciar sesión.",

		"dashboard.title":         "Mis cuentas",
		"dashboard.newBill":       "Nueva cuenta",
		"dashboard.empty":         "Aún no tienes cuentas. ¡Crea la primera!",
		"dashboard.errorLoad":     "No se pudieron cargar las cuentas",
		"dashboard.errorDelete":   "No se pudo eliminar la cuenta",
		"dashboard.confirmDelete": "¿Seguro que deseas eliminar esta cuenta?",

		"bill.expenseCount": "%d gastos",
		"bill.showExpenses": "Ver gastos",
		"bill.hideExpenses": "Ocultar gastos",
		"bill.viewDetails":  "Ver detalle",
		"bill.noExpenses":   "Esta cuenta no tiene gastos",
		"bill.description":  "Descripción",
		"bill.category":     "Categoría",
		"bill.date":         "Fecha",
		"bill.currency":     "Moneda",
		"bill.exchangeRate": "Tipo de cambio (PEN por USD)",
		"bill.amount":       "Monto",
		"bill.totalPen":     "Total (PEN)",
		"bill.totalUsd":     "Total (USD)",
		"bill.rate":         "Tipo de cambio",
		"bill.created":      "Creada",

		"billDetail.title":     "Detalle de la cuenta",
		"billDetail.errorLoad": "No se pudo cargar la cuenta",
		"billDetail.notFound":  "Cuenta no encontrada",
		"billDetail.expenses":  "Gastos",

		"create.title":                  "Crear nueva cuenta",
		"create.descriptionPlaceholder": "ej., Supermercado, Restaurante",
		"create.categoryPlaceholder":    "ej., Comida",
		"create.expenses":               "Gastos",
		"create.addExpense":             "+ Agregar gasto",
		"create.expenseName":            "Nombre del gasto",
		"create.amountPlaceholder":      "Monto",
		"create.categoryOptional":       "Categoría (opcional)",
		"create.removeExpense":          "Quitar gasto",
		"create.total":                  "Total",
		"create.submit":                 "Crear cuenta",
		"create.submitting":             "Creando...",
		"create.errorNoExpenses":        "Agrega al menos un gasto con nombre y monto",
		"create.errorRequired":          "Completa la descripción, categoría, fecha, moneda y tipo de cambio",
		"create.errorCreate":            "No se pudo crear la cuenta",

		"statistics.title":      "Estadísticas",
		"statistics.showLast":   "Mostrar últimos",
		"statistics.months":     "meses",
		"statistics.errorLoad":  "No se pudieron cargar las estadísticas",
		"statistics.errorChart": "No se pudo dibujar este gráfico",
		"statistics.totalPen":   "Total gastado (PEN)",
		"statistics.totalUsd":   "Total gastado (USD)",
		"statistics.totalBills": "Total de cuentas",
		"statistics.average":    "Promedio por cuenta",
		"statistics.monthly":    "Gasto mensual",
		"statistics.weekly":     "Gasto semanal",
		"statistics.byCategory": "Gasto por categoría",
		"statistics.noData":     "Aún no hay estadísticas disponibles",
		"statistics.billCount":  "%d cuentas",

		"link.title":           "Vincular cuenta de Telegram",
		"link.statusLinked":    "Tu cuenta está vinculada a Telegram",
		"link.statusNotLinked": "Tu cuenta aún no está vinculada a Telegram",
		"link.telegramId":      "ID de Telegram: %d",
		"link.howTo":           "Cómo vincular tu cuenta",
		"link.step1":           "Abre Telegram e inicia un chat con @%s",
		"link.step2":           "Envía el comando /link para obtener un código de 6 dígitos",
		"link.step3":           "Ingresa el código abajo",
		"link.openBot":         "Abrir @%s",
		"link.codeLabel":       "Código de verificación",
		"link.verify":          "Verificar código",
		"link.verifying":       "Verificando...",
		"link.errorInvalid":    "Ingresa un código válido de 6 dígitos",
		"link.errorVerify":     "No se pudo verificar el código. Inténtalo de nuevo.",
		"link.success":         "Tu cuenta de Telegram se vinculó correctamente",
		"link.errorStatus":     "No se pudo cargar el estado de vinculación",

		"error.generic":     "Algo salió mal. Inténtalo de nuevo.",
		"error.rateLimited": "Demasiadas solicitudes. Espera un momento e inténtalo de nuevo.",
	},
}
