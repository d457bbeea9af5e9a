// Package format renders normalized trees as C# text.
//
// Назначение: граница вывода для CLI (`ilnorm print`) и тестов; примитивы
// печатаются ключевыми словами, идентификаторы нормализуются в NFC и
// экранируются.
// Не делает: разбор C#, сохранение исходного форматирования, IO.
// Зависимости: internal/ast, internal/types, golang.org/x/text/unicode/norm.
package format
