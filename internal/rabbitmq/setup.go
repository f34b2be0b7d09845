// Package rabbitmq содержит подключение к RabbitMQ, объявление очередей
// событий идентификации и потребителя сообщений.
package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// IdentityExchange имя обменника событий системы идентификации.
const IdentityExchange = "identity"

// UserCreatedQueue имя очереди событий о создании пользователей.
const UserCreatedQueue = "user.created"

// QueueConfig описывает очередь и ключ маршрутизации для привязки.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetIdentityQueues возвращает очереди событий идентификации.
func GetIdentityQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: UserCreatedQueue, RoutingKey: "user.created"},
	}
}

func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	err = ch.ExchangeDeclare(
		IdentityExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			IdentityExchange,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
