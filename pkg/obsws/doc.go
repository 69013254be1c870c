// Package obsws реализует клиентскую сессию для JSON-over-WebSocket протокола
// удалённого управления OBS (obs-websocket 4.x):
//   - Одно постоянное WebSocket соединение на сессию
//   - Challenge-response аутентификацию (GetAuthRequired + Authenticate)
//   - Конкурентные запросы с корреляцией ответов по message-id
//   - Доставку событий сервера (update-type) в EventSink из фонового цикла чтения
//
// # Сессия
//
//	cfg := obsws.DefaultSessionConfig("ws://localhost:4444")
//	cfg.EventSink = obsws.EventSinkFunc(func(ev obsws.Event) {
//	    log.Println("event", ev.Type)
//	})
//	session := obsws.NewSession(cfg)
//	if err := session.Connect(ctx, password); err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	resp, err := session.Call(ctx, "GetSceneList", nil)
//
// # Протокол сообщений
//
// Запрос (аргументы раскладываются на верхний уровень объекта):
//
//	{"request-type": "SetCurrentScene", "message-id": "2", "scene-name": "Game"}
//
// Ответ (содержит тот же message-id):
//
//	{"message-id": "2", "status": "ok"}
//	{"message-id": "3", "status": "error", "error": "requested scene does not exist"}
//
// Событие (message-id отсутствует, именно по этому оно отличается от ответа):
//
//	{"update-type": "SwitchScenes", "scene-name": "Game", "sources": [...]}
//
// # Аутентификация
//
//	secret = base64(sha256(password + salt))
//	auth   = base64(sha256(secret + challenge))
//
// # Ограничения
//
// Переподключение не выполняется: после обрыва соединения сессия закрыта,
// а все ожидающие вызовы получают ErrConnectionClosed.
package obsws
