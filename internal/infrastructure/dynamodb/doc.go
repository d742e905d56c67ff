// Package dynamodb implementa el almacén de clientes sobre DynamoDB.
//
// Esquema esperado:
//
//   - Clave primaria simple: customerId (S).
//   - GSI de tenant (por defecto "tenantId-index"): partition key tenantId (S),
//     proyección ALL, porque los listados deserializan el ítem completo.
//
// La creación usa PutItem con attribute_not_exists(customerId); la actualización parcial usa
// UpdateItem con attribute_exists(customerId) y ReturnValues=ALL_NEW, de modo que el resultado
// es lo que quedó en la tabla. La búsqueda es un Scan filtrado: costo lineal en toda la tabla.
// contains() de DynamoDB es sensible a mayúsculas.
//
// Crear con NewCustomerRepository, llamar Connect y luego Init (valida el esquema).
// CustomerRepo es seguro para uso concurrente después de Connect.
package dynamodb
