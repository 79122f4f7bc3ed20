package i18n

var english = map[Key]string{
	BreakdownPlanning:    "Planning weeks %d-%d",
	BreakdownAssembling:  "Assembling your plan",
	BreakdownDone:        "Your plan is ready",
	ReminderTitle:        "Keep your goals moving",
	ReminderBody:         "You have %d active goal(s). A small step today counts.",
	ReminderEmailSubject: "Your daily goal reminder",
	DigestSubject:        "Your weekly progress digest",
	DigestBody:           "Hi %s, you completed %d task(s) this week. Keep it up!",
	PushTestTitle:        "Test notification",
	PushTestBody:         "Push notifications are working.",
	EmailTestSubject:     "Test email",
	EmailTestBody:        "Email notifications are working.",
	WelcomeTitle:         "Welcome to SMART Goals",
	WelcomeBody:          "Create your first goal and let the AI plan your weeks.",
	GoalCompletedTitle:   "Goal completed",
	GoalCompletedBody:    "You completed \"%s\". Well done!",
}

var chinese = map[Key]string{
	BreakdownPlanning:    "正在规划第 %d-%d 周",
	BreakdownAssembling:  "正在整理你的计划",
	BreakdownDone:        "计划已生成",
	ReminderTitle:        "继续推进你的目标",
	ReminderBody:         "你有 %d 个进行中的目标，今天也迈出一小步吧。",
	ReminderEmailSubject: "每日目标提醒",
	DigestSubject:        "每周进度摘要",
	DigestBody:           "%s，你本周完成了 %d 个任务，继续加油！",
	PushTestTitle:        "测试通知",
	PushTestBody:         "推送通知工作正常。",
	EmailTestSubject:     "测试邮件",
	EmailTestBody:        "邮件通知工作正常。",
	WelcomeTitle:         "欢迎使用 SMART Goals",
	WelcomeBody:          "创建你的第一个目标，让 AI 为你规划每一周。",
	GoalCompletedTitle:   "目标已完成",
	GoalCompletedBody:    "你完成了「%s」，干得漂亮！",
}

var spanish = map[Key]string{
	BreakdownPlanning:    "Planificando semanas %d-%d",
	BreakdownAssembling:  "Preparando tu plan",
	BreakdownDone:        "Tu plan está listo",
	ReminderTitle:        "Mantén tus metas en marcha",
	ReminderBody:         "Tienes %d meta(s) activa(s). Un pequeño paso hoy cuenta.",
	ReminderEmailSubject: "Tu recordatorio diario de metas",
	DigestSubject:        "Tu resumen semanal de progreso",
	DigestBody:           "Hola %s, completaste %d tarea(s) esta semana. ¡Sigue así!",
	PushTestTitle:        "Notificación de prueba",
	PushTestBody:         "Las notificaciones push funcionan.",
	EmailTestSubject:     "Correo de prueba",
	EmailTestBody:        "Las notificaciones por correo funcionan.",
	WelcomeTitle:         "Bienvenido a SMART Goals",
	WelcomeBody:          "Crea tu primera meta y deja que la IA planifique tus semanas.",
	GoalCompletedTitle:   "Meta completada",
}
